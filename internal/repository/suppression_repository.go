// internal/repository/suppression_repository.go
package repository

import (
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/unclebandit/sendmulticamp/internal/model"
)

type SuppressionRepositoryInterface interface {
    // Blacklist CRUD
    AddToBlacklist(e *model.BlacklistEntry) error
    ListBlacklist(userID string) ([]model.BlacklistEntry, error)
    RemoveFromBlacklist(id, userID string) error

    // Unsubscribe CRUD
    AddUnsubscribe(e *model.UnsubscribeEntry) error
    ListUnsubscribes(userID string) ([]model.UnsubscribeEntry, error)
    RemoveUnsubscribe(id, userID string) error

    // Suppression resolution
    BlacklistedEmails(userID string) ([]string, error)
    UnsubscribedEmails(userID string) ([]string, error)
}

type SuppressionRepository struct {
    DB *sql.DB
}

func (r *SuppressionRepository) AddToBlacklist(e *model.BlacklistEntry) error {
    if e.ID == "" {
        e.ID = uuid.NewString()
    }
    e.CreatedAt = time.Now()
    query := `INSERT INTO blacklist (id, user_id, email, reason, created_at) VALUES ($1, $2, $3, $4, $5)`
    _, err := r.DB.Exec(query, e.ID, e.UserID, e.Email, e.Reason, e.CreatedAt)
    return err
}

func (r *SuppressionRepository) ListBlacklist(userID string) ([]model.BlacklistEntry, error) {
    query := `SELECT id, user_id, email, reason, created_at FROM blacklist WHERE user_id=$1 ORDER BY created_at DESC`
    rows, err := r.DB.Query(query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    entries := []model.BlacklistEntry{}
    for rows.Next() {
        var e model.BlacklistEntry
        if err := rows.Scan(&e.ID, &e.UserID, &e.Email, &e.Reason, &e.CreatedAt); err != nil {
            return nil, err
        }
        entries = append(entries, e)
    }
    return entries, rows.Err()
}

func (r *SuppressionRepository) RemoveFromBlacklist(id, userID string) error {
    _, err := r.DB.Exec(`DELETE FROM blacklist WHERE id=$1 AND user_id=$2`, id, userID)
    return err
}

func (r *SuppressionRepository) AddUnsubscribe(e *model.UnsubscribeEntry) error {
    if e.ID == "" {
        e.ID = uuid.NewString()
    }
    e.CreatedAt = time.Now()
    query := `
        INSERT INTO unsubscribe_list (id, user_id, email, list_id, campaign_id, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
    _, err := r.DB.Exec(query, e.ID, e.UserID, e.Email, e.ListID, e.CampaignID, e.Reason, e.CreatedAt)
    return err
}

func (r *SuppressionRepository) ListUnsubscribes(userID string) ([]model.UnsubscribeEntry, error) {
    query := `
        SELECT id, user_id, email, list_id, campaign_id, reason, created_at
        FROM unsubscribe_list WHERE user_id=$1 ORDER BY created_at DESC
    `
    rows, err := r.DB.Query(query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    entries := []model.UnsubscribeEntry{}
    for rows.Next() {
        var e model.UnsubscribeEntry
        if err := rows.Scan(&e.ID, &e.UserID, &e.Email, &e.ListID, &e.CampaignID, &e.Reason, &e.CreatedAt); err != nil {
            return nil, err
        }
        entries = append(entries, e)
    }
    return entries, rows.Err()
}

func (r *SuppressionRepository) RemoveUnsubscribe(id, userID string) error {
    _, err := r.DB.Exec(`DELETE FROM unsubscribe_list WHERE id=$1 AND user_id=$2`, id, userID)
    return err
}

func (r *SuppressionRepository) BlacklistedEmails(userID string) ([]string, error) {
    return r.scanEmails(`SELECT email FROM blacklist WHERE user_id=$1`, userID)
}

func (r *SuppressionRepository) UnsubscribedEmails(userID string) ([]string, error) {
    return r.scanEmails(`SELECT email FROM unsubscribe_list WHERE user_id=$1`, userID)
}

func (r *SuppressionRepository) scanEmails(query, userID string) ([]string, error) {
    rows, err := r.DB.Query(query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    emails := []string{}
    for rows.Next() {
        var email string
        if err := rows.Scan(&email); err != nil {
            return nil, err
        }
        emails = append(emails, email)
    }
    return emails, rows.Err()
}

var _ SuppressionRepositoryInterface = (*SuppressionRepository)(nil)
