// internal/repository/user_repository.go
package repository

import (
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/model"
)

type UserRepositoryInterface interface {
    Create(u *model.User) error
    GetByEmail(email string) (*model.User, error)
    GetByID(id string) (*model.User, error)
}

type UserRepository struct {
    DB *sql.DB
}

func (r *UserRepository) Create(u *model.User) error {
    if u.ID == "" {
        u.ID = uuid.NewString()
    }
    u.CreatedAt = time.Now()
    query := `
        INSERT INTO users (id, email, password, full_name, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
    _, err := r.DB.Exec(query, u.ID, u.Email, u.Password, u.FullName, u.CreatedAt)
    return err
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
    query := `SELECT id, email, password, full_name, created_at FROM users WHERE email=$1`
    var u model.User
    err := r.DB.QueryRow(query, email).Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.CreatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return &u, nil
}

func (r *UserRepository) GetByID(id string) (*model.User, error) {
    query := `SELECT id, email, password, full_name, created_at FROM users WHERE id=$1`
    var u model.User
    err := r.DB.QueryRow(query, id).Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.CreatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, apperrors.NewNotFound("user", id)
        }
        return nil, err
    }
    return &u, nil
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
