// internal/repository/campaign_repository.go
package repository

import (
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/model"
)

type CampaignRepositoryInterface interface {
    Create(c *model.Campaign) error
    GetByID(id, userID string) (*model.Campaign, error)
    ListByUser(userID string) ([]model.Campaign, error)
    Update(c *model.Campaign) error
    Delete(id, userID string) error

    // Dispatch state transitions.
    MarkSending(id string, totalSubscribers int) error
    MarkSent(id string) error
}

type CampaignRepository struct {
    DB *sql.DB
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
    if c.ID == "" {
        c.ID = uuid.NewString()
    }
    if c.Status == "" {
        c.Status = model.CampaignDraft
    }
    c.CreatedAt = time.Now()
    query := `
        INSERT INTO campaigns (
            id, user_id, list_id, name, subject, from_name, from_email,
            reply_to, html_content, text_content, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
    _, err := r.DB.Exec(query,
        c.ID, c.UserID, c.ListID, c.Name, c.Subject, c.FromName, c.FromEmail,
        c.ReplyTo, c.HTMLContent, c.TextContent, c.Status, c.CreatedAt,
    )
    return err
}

func (r *CampaignRepository) GetByID(id, userID string) (*model.Campaign, error) {
    query := `
        SELECT c.id, c.user_id, c.list_id, c.name, c.subject, c.from_name, c.from_email,
               c.reply_to, c.html_content, c.text_content, c.status,
               c.total_subscribers, c.sent_count, c.sent_at, c.created_at, c.updated_at,
               l.name
        FROM campaigns c
        JOIN lists l ON c.list_id = l.id
        WHERE c.id=$1 AND c.user_id=$2
    `
    var c model.Campaign
    err := r.DB.QueryRow(query, id, userID).Scan(
        &c.ID, &c.UserID, &c.ListID, &c.Name, &c.Subject, &c.FromName, &c.FromEmail,
        &c.ReplyTo, &c.HTMLContent, &c.TextContent, &c.Status,
        &c.TotalSubscribers, &c.SentCount, &c.SentAt, &c.CreatedAt, &c.UpdatedAt,
        &c.ListName,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, apperrors.NewNotFound("campaign", id)
        }
        return nil, err
    }
    return &c, nil
}

func (r *CampaignRepository) ListByUser(userID string) ([]model.Campaign, error) {
    query := `
        SELECT c.id, c.user_id, c.list_id, c.name, c.subject, c.from_name, c.from_email,
               c.reply_to, c.html_content, c.text_content, c.status,
               c.total_subscribers, c.sent_count, c.sent_at, c.created_at, c.updated_at,
               l.name
        FROM campaigns c
        JOIN lists l ON c.list_id = l.id
        WHERE c.user_id=$1
        ORDER BY c.created_at DESC
    `
    rows, err := r.DB.Query(query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    campaigns := []model.Campaign{}
    for rows.Next() {
        var c model.Campaign
        if err := rows.Scan(
            &c.ID, &c.UserID, &c.ListID, &c.Name, &c.Subject, &c.FromName, &c.FromEmail,
            &c.ReplyTo, &c.HTMLContent, &c.TextContent, &c.Status,
            &c.TotalSubscribers, &c.SentCount, &c.SentAt, &c.CreatedAt, &c.UpdatedAt,
            &c.ListName,
        ); err != nil {
            return nil, err
        }
        campaigns = append(campaigns, c)
    }
    return campaigns, rows.Err()
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
    query := `
        UPDATE campaigns
        SET name=$1, subject=$2, from_name=$3, from_email=$4, reply_to=$5,
            html_content=$6, text_content=$7, updated_at=NOW()
        WHERE id=$8 AND user_id=$9
    `
    res, err := r.DB.Exec(query,
        c.Name, c.Subject, c.FromName, c.FromEmail, c.ReplyTo,
        c.HTMLContent, c.TextContent, c.ID, c.UserID,
    )
    if err != nil {
        return err
    }
    return r.requireRow(res, c.ID)
}

func (r *CampaignRepository) Delete(id, userID string) error {
    res, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1 AND user_id=$2`, id, userID)
    if err != nil {
        return err
    }
    return r.requireRow(res, id)
}

// MarkSending transitions a campaign into the sending state. A campaign
// already in "sending" keeps its row untouched so a concurrent second
// trigger loses the race instead of starting an interleaved run.
func (r *CampaignRepository) MarkSending(id string, totalSubscribers int) error {
    query := `
        UPDATE campaigns
        SET status=$1, total_subscribers=$2, sent_count=0, updated_at=NOW()
        WHERE id=$3 AND status<>$4
    `
    res, err := r.DB.Exec(query, model.CampaignSending, totalSubscribers, id, model.CampaignSending)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return apperrors.ErrAlreadySending
    }
    return nil
}

// MarkSent terminates a run. sent_count is left as accumulated by the
// ledger; only status and the completion timestamp change.
func (r *CampaignRepository) MarkSent(id string) error {
    query := `UPDATE campaigns SET status=$1, sent_at=NOW(), updated_at=NOW() WHERE id=$2`
    _, err := r.DB.Exec(query, model.CampaignSent, id)
    return err
}

func (r *CampaignRepository) requireRow(res sql.Result, id string) error {
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return apperrors.NewNotFound("campaign", id)
    }
    return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
