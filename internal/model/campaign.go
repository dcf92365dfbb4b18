// internal/model/campaign.go
package model

import "time"

// Campaign lifecycle. Individual recipient failures never move a campaign
// out of "sent"; they live in campaign_sends rows instead.
const (
    CampaignDraft   = "draft"
    CampaignSending = "sending"
    CampaignSent    = "sent"
)

type Campaign struct {
    ID               string     `db:"id" json:"id"`
    UserID           string     `db:"user_id" json:"user_id"`
    ListID           string     `db:"list_id" json:"list_id"`
    Name             string     `db:"name" json:"name"`
    Subject          string     `db:"subject" json:"subject"`
    FromName         string     `db:"from_name" json:"from_name"`
    FromEmail        string     `db:"from_email" json:"from_email"`
    ReplyTo          string     `db:"reply_to" json:"reply_to"`
    HTMLContent      string     `db:"html_content" json:"html_content"`
    TextContent      string     `db:"text_content" json:"text_content"`
    Status           string     `db:"status" json:"status"`
    TotalSubscribers int        `db:"total_subscribers" json:"total_subscribers"`
    SentCount        int        `db:"sent_count" json:"sent_count"`
    SentAt           *time.Time `db:"sent_at" json:"sent_at,omitempty"`
    CreatedAt        time.Time  `db:"created_at" json:"created_at"`
    UpdatedAt        *time.Time `db:"updated_at" json:"updated_at,omitempty"`

    // ListName is joined in by list queries.
    ListName string `db:"-" json:"list_name,omitempty"`
}
