// internal/model/suppression.go
package model

import "time"

// BlacklistEntry is a permanent, manually curated suppression.
type BlacklistEntry struct {
    ID        string    `db:"id" json:"id"`
    UserID    string    `db:"user_id" json:"user_id"`
    Email     string    `db:"email" json:"email"`
    Reason    string    `db:"reason" json:"reason"`
    CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UnsubscribeEntry is an opt-out, optionally tied to a list or campaign.
type UnsubscribeEntry struct {
    ID         string    `db:"id" json:"id"`
    UserID     string    `db:"user_id" json:"user_id"`
    Email      string    `db:"email" json:"email"`
    ListID     *string   `db:"list_id" json:"list_id,omitempty"`
    CampaignID *string   `db:"campaign_id" json:"campaign_id,omitempty"`
    Reason     string    `db:"reason" json:"reason"`
    CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
