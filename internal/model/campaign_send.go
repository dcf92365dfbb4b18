// internal/model/campaign_send.go
package model

import "time"

// Ledger row statuses. Rows are immutable once written; a re-send of the
// same campaign appends new rows instead of updating old ones.
const (
    SendSent    = "sent"
    SendFailed  = "failed"
    SendSkipped = "skipped"
)

type CampaignSend struct {
    ID           string     `db:"id" json:"id"`
    CampaignID   string     `db:"campaign_id" json:"campaign_id"`
    SubscriberID string     `db:"subscriber_id" json:"subscriber_id"`
    Status       string     `db:"status" json:"status"`
    ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
    SentAt       *time.Time `db:"sent_at" json:"sent_at,omitempty"`
    CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
