// internal/repository/list_repository.go
package repository

import (
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/model"
)

type ListRepositoryInterface interface {
    Create(l *model.List) error
    ListByUser(userID string) ([]model.List, error)
    GetByID(id, userID string) (*model.List, error)
}

type ListRepository struct {
    DB *sql.DB
}

func (r *ListRepository) Create(l *model.List) error {
    if l.ID == "" {
        l.ID = uuid.NewString()
    }
    l.CreatedAt = time.Now()
    query := `
        INSERT INTO lists (id, user_id, name, description, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
    _, err := r.DB.Exec(query, l.ID, l.UserID, l.Name, l.Description, l.CreatedAt)
    return err
}

// ListByUser returns the user's lists with their active subscriber counts.
func (r *ListRepository) ListByUser(userID string) ([]model.List, error) {
    query := `
        SELECT l.id, l.user_id, l.name, l.description, l.created_at,
               COUNT(s.id) FILTER (WHERE s.status = 'active') AS subscriber_count
        FROM lists l
        LEFT JOIN subscribers s ON l.id = s.list_id
        WHERE l.user_id = $1
        GROUP BY l.id
        ORDER BY l.created_at DESC
    `
    rows, err := r.DB.Query(query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    lists := []model.List{}
    for rows.Next() {
        var l model.List
        if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.CreatedAt, &l.SubscriberCount); err != nil {
            return nil, err
        }
        lists = append(lists, l)
    }
    return lists, rows.Err()
}

// GetByID fetches a list scoped to its owner. A list owned by another user
// is indistinguishable from a missing one.
func (r *ListRepository) GetByID(id, userID string) (*model.List, error) {
    query := `SELECT id, user_id, name, description, created_at FROM lists WHERE id=$1 AND user_id=$2`
    var l model.List
    err := r.DB.QueryRow(query, id, userID).Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.CreatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, apperrors.NewNotFound("list", id)
        }
        return nil, err
    }
    return &l, nil
}

var _ ListRepositoryInterface = (*ListRepository)(nil)
