// internal/model/list.go
package model

import "time"

type List struct {
    ID          string    `db:"id" json:"id"`
    UserID      string    `db:"user_id" json:"user_id"`
    Name        string    `db:"name" json:"name"`
    Description string    `db:"description" json:"description"`
    CreatedAt   time.Time `db:"created_at" json:"created_at"`

    // SubscriberCount is filled by the list query, not a column.
    SubscriberCount int `db:"-" json:"subscriber_count"`
}
