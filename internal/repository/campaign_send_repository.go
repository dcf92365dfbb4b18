// internal/repository/campaign_send_repository.go
package repository

import (
    "database/sql"

    "github.com/google/uuid"

    "github.com/unclebandit/sendmulticamp/internal/model"
)

type CampaignSendRepositoryInterface interface {
    RecordOutcome(campaignID, subscriberID, status, errorMessage string) error
    Summarize(campaignID string) (map[string]int, error)
}

// CampaignSendRepository is the durable half of the send ledger: one
// immutable row per delivery attempt, plus the campaign's aggregate
// sent_count kept in step inside the same transaction.
type CampaignSendRepository struct {
    DB *sql.DB
}

func (r *CampaignSendRepository) RecordOutcome(campaignID, subscriberID, status, errorMessage string) error {
    tx, err := r.DB.Begin()
    if err != nil {
        return err
    }
    defer tx.Rollback()

    query := `
        INSERT INTO campaign_sends (id, campaign_id, subscriber_id, status, error_message, sent_at, created_at)
        VALUES ($1, $2, $3, $4, $5, CASE WHEN $4 = 'sent' THEN NOW() END, NOW())
    `
    if _, err := tx.Exec(query, uuid.NewString(), campaignID, subscriberID, status, errorMessage); err != nil {
        return err
    }

    if status == model.SendSent {
        // Relative increment keeps sent_count equal to the count of
        // sent rows even with concurrent runs on the same campaign.
        if _, err := tx.Exec(
            `UPDATE campaigns SET sent_count = sent_count + 1 WHERE id=$1`,
            campaignID,
        ); err != nil {
            return err
        }
    }

    return tx.Commit()
}

func (r *CampaignSendRepository) Summarize(campaignID string) (map[string]int, error) {
    query := `SELECT status, COUNT(*) FROM campaign_sends WHERE campaign_id=$1 GROUP BY status`
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    summary := map[string]int{
        model.SendSent:    0,
        model.SendFailed:  0,
        model.SendSkipped: 0,
    }
    for rows.Next() {
        var status string
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, err
        }
        summary[status] = count
    }
    return summary, rows.Err()
}

var _ CampaignSendRepositoryInterface = (*CampaignSendRepository)(nil)
