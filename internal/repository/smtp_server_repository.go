// internal/repository/smtp_server_repository.go
package repository

import (
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/model"
)

type SMTPServerRepositoryInterface interface {
    Create(s *model.SMTPServer) error
    ListByUser(userID string) ([]model.SMTPServer, error)
    GetByID(id, userID string) (*model.SMTPServer, error)
    Update(s *model.SMTPServer) error
    Delete(id, userID string) error

    // Transport pool support.
    ListActive(userID string) ([]model.SMTPServer, error)
    ReserveQuotaSlot(id string) (bool, error)
    ReleaseQuotaSlot(id string) error
    ResetDailyCounts() (int64, error)
}

type SMTPServerRepository struct {
    DB *sql.DB
}

const smtpServerColumns = `id, user_id, name, host, port, username, password, use_tls,
    daily_limit, emails_sent_today, is_active, created_at`

func (r *SMTPServerRepository) Create(s *model.SMTPServer) error {
    if s.ID == "" {
        s.ID = uuid.NewString()
    }
    s.CreatedAt = time.Now()
    query := `
        INSERT INTO smtp_servers (id, user_id, name, host, port, username, password,
            use_tls, daily_limit, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
    _, err := r.DB.Exec(query,
        s.ID, s.UserID, s.Name, s.Host, s.Port, s.Username, s.Password,
        s.UseTLS, s.DailyLimit, s.IsActive, s.CreatedAt,
    )
    return err
}

func (r *SMTPServerRepository) ListByUser(userID string) ([]model.SMTPServer, error) {
    query := `SELECT ` + smtpServerColumns + ` FROM smtp_servers WHERE user_id=$1 ORDER BY created_at DESC`
    return r.scanServers(query, userID)
}

// ListActive returns the user's active transports in a stable order. The
// ascending emails_sent_today ordering starts each run on the least-used
// transport, matching how the pool rotates afterwards.
func (r *SMTPServerRepository) ListActive(userID string) ([]model.SMTPServer, error) {
    query := `
        SELECT ` + smtpServerColumns + `
        FROM smtp_servers
        WHERE user_id=$1 AND is_active=TRUE
        ORDER BY emails_sent_today ASC, created_at ASC
    `
    return r.scanServers(query, userID)
}

func (r *SMTPServerRepository) GetByID(id, userID string) (*model.SMTPServer, error) {
    query := `SELECT ` + smtpServerColumns + ` FROM smtp_servers WHERE id=$1 AND user_id=$2`
    var s model.SMTPServer
    err := r.DB.QueryRow(query, id, userID).Scan(
        &s.ID, &s.UserID, &s.Name, &s.Host, &s.Port, &s.Username, &s.Password,
        &s.UseTLS, &s.DailyLimit, &s.EmailsSentToday, &s.IsActive, &s.CreatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, apperrors.NewNotFound("smtp server", id)
        }
        return nil, err
    }
    return &s, nil
}

func (r *SMTPServerRepository) Update(s *model.SMTPServer) error {
    query := `
        UPDATE smtp_servers
        SET name=$1, host=$2, port=$3, username=$4, password=$5, use_tls=$6,
            daily_limit=$7, is_active=$8
        WHERE id=$9 AND user_id=$10
    `
    res, err := r.DB.Exec(query,
        s.Name, s.Host, s.Port, s.Username, s.Password, s.UseTLS,
        s.DailyLimit, s.IsActive, s.ID, s.UserID,
    )
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return apperrors.NewNotFound("smtp server", s.ID)
    }
    return nil
}

func (r *SMTPServerRepository) Delete(id, userID string) error {
    _, err := r.DB.Exec(`DELETE FROM smtp_servers WHERE id=$1 AND user_id=$2`, id, userID)
    return err
}

// ReserveQuotaSlot claims one send against the transport's daily limit in a
// single conditional update. It returns false when the limit is already
// reached, so two runs can never both claim the last slot. The counter is
// incremented up front; a failed delivery hands the slot back through
// ReleaseQuotaSlot, leaving the steady-state count equal to successes.
func (r *SMTPServerRepository) ReserveQuotaSlot(id string) (bool, error) {
    query := `
        UPDATE smtp_servers
        SET emails_sent_today = emails_sent_today + 1
        WHERE id=$1 AND is_active=TRUE
          AND (daily_limit = 0 OR emails_sent_today < daily_limit)
    `
    res, err := r.DB.Exec(query, id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// ReleaseQuotaSlot returns a previously reserved slot after a failed
// delivery attempt.
func (r *SMTPServerRepository) ReleaseQuotaSlot(id string) error {
    query := `
        UPDATE smtp_servers
        SET emails_sent_today = emails_sent_today - 1
        WHERE id=$1 AND emails_sent_today > 0
    `
    _, err := r.DB.Exec(query, id)
    return err
}

// ResetDailyCounts zeroes every transport's sent-today counter. Run once
// per day by the scheduler.
func (r *SMTPServerRepository) ResetDailyCounts() (int64, error) {
    res, err := r.DB.Exec(`UPDATE smtp_servers SET emails_sent_today = 0 WHERE emails_sent_today > 0`)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

func (r *SMTPServerRepository) scanServers(query string, args ...interface{}) ([]model.SMTPServer, error) {
    rows, err := r.DB.Query(query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    servers := []model.SMTPServer{}
    for rows.Next() {
        var s model.SMTPServer
        if err := rows.Scan(
            &s.ID, &s.UserID, &s.Name, &s.Host, &s.Port, &s.Username, &s.Password,
            &s.UseTLS, &s.DailyLimit, &s.EmailsSentToday, &s.IsActive, &s.CreatedAt,
        ); err != nil {
            return nil, err
        }
        servers = append(servers, s)
    }
    return servers, rows.Err()
}

var _ SMTPServerRepositoryInterface = (*SMTPServerRepository)(nil)
