// internal/model/smtp_server.go
package model

import "time"

// SMTPServer is an outbound transport: connection parameters plus daily
// quota state. daily_limit = 0 means unlimited.
type SMTPServer struct {
    ID              string    `db:"id" json:"id"`
    UserID          string    `db:"user_id" json:"user_id"`
    Name            string    `db:"name" json:"name"`
    Host            string    `db:"host" json:"host"`
    Port            int       `db:"port" json:"port"`
    Username        string    `db:"username" json:"username"`
    Password        string    `db:"password" json:"-"`
    UseTLS          bool      `db:"use_tls" json:"use_tls"`
    DailyLimit      int       `db:"daily_limit" json:"daily_limit"`
    EmailsSentToday int       `db:"emails_sent_today" json:"emails_sent_today"`
    IsActive        bool      `db:"is_active" json:"is_active"`
    CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Usable reports whether the transport still has quota left today.
func (s *SMTPServer) Usable() bool {
    return s.DailyLimit == 0 || s.EmailsSentToday < s.DailyLimit
}
