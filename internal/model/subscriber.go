// internal/model/subscriber.go
package model

import "time"

// Subscriber statuses. Only active subscribers are eligible for sends.
const (
    SubscriberActive       = "active"
    SubscriberUnsubscribed = "unsubscribed"
    SubscriberBounced      = "bounced"
)

type Subscriber struct {
    ID        string    `db:"id" json:"id"`
    ListID    string    `db:"list_id" json:"list_id"`
    Email     string    `db:"email" json:"email"`
    FirstName string    `db:"first_name" json:"first_name"`
    LastName  string    `db:"last_name" json:"last_name"`
    Status    string    `db:"status" json:"status"`
    CreatedAt time.Time `db:"created_at" json:"created_at"`
}
