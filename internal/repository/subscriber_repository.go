// internal/repository/subscriber_repository.go
package repository

import (
    "database/sql"
    "time"

    "github.com/google/uuid"
    "github.com/lib/pq"

    "github.com/unclebandit/sendmulticamp/internal/model"
)

type SubscriberRepositoryInterface interface {
    Create(s *model.Subscriber) error
    ListByList(listID string) ([]model.Subscriber, error)
    ListActive(listID string) ([]model.Subscriber, error)
}

type SubscriberRepository struct {
    DB *sql.DB
}

func (r *SubscriberRepository) Create(s *model.Subscriber) error {
    if s.ID == "" {
        s.ID = uuid.NewString()
    }
    if s.Status == "" {
        s.Status = model.SubscriberActive
    }
    s.CreatedAt = time.Now()
    query := `
        INSERT INTO subscribers (id, list_id, email, first_name, last_name, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
    _, err := r.DB.Exec(query, s.ID, s.ListID, s.Email, s.FirstName, s.LastName, s.Status, s.CreatedAt)
    return err
}

func (r *SubscriberRepository) ListByList(listID string) ([]model.Subscriber, error) {
    query := `
        SELECT id, list_id, email, first_name, last_name, status, created_at
        FROM subscribers WHERE list_id=$1 ORDER BY created_at DESC
    `
    return r.scanSubscribers(query, listID)
}

// ListActive returns the send-eligible subscribers of a list in a stable
// order. Suppression filtering happens above this layer.
func (r *SubscriberRepository) ListActive(listID string) ([]model.Subscriber, error) {
    query := `
        SELECT id, list_id, email, first_name, last_name, status, created_at
        FROM subscribers WHERE list_id=$1 AND status=$2 ORDER BY created_at ASC
    `
    return r.scanSubscribers(query, listID, model.SubscriberActive)
}

func (r *SubscriberRepository) scanSubscribers(query string, args ...interface{}) ([]model.Subscriber, error) {
    rows, err := r.DB.Query(query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    subs := []model.Subscriber{}
    for rows.Next() {
        var s model.Subscriber
        if err := rows.Scan(&s.ID, &s.ListID, &s.Email, &s.FirstName, &s.LastName, &s.Status, &s.CreatedAt); err != nil {
            return nil, err
        }
        subs = append(subs, s)
    }
    return subs, rows.Err()
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
    if pqErr, ok := err.(*pq.Error); ok {
        return pqErr.Code == "23505"
    }
    return false
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
