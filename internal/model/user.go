// internal/model/user.go
package model

import "time"

type User struct {
    ID        string    `db:"id" json:"id"`
    Email     string    `db:"email" json:"email"`
    Password  string    `db:"password" json:"-"`
    FullName  string    `db:"full_name" json:"full_name"`
    CreatedAt time.Time `db:"created_at" json:"created_at"`
}
