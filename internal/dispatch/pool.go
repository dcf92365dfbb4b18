// internal/dispatch/pool.go
package dispatch

import (
    "sync"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/model"
)

// QuotaStore claims and releases daily-quota slots against the durable
// per-transport counter. Reservation must be atomic: two callers may never
// both claim the last slot under a transport's daily limit.
type QuotaStore interface {
    ReserveQuotaSlot(id string) (bool, error)
    ReleaseQuotaSlot(id string) error
}

// TransportPool rotates sends across a user's active transports. The pool
// holds a per-run snapshot of the transport list; quota state lives in the
// store, so concurrent runs sharing a transport coordinate through the
// same counter.
type TransportPool struct {
    mu      sync.Mutex
    servers []model.SMTPServer
    cursor  int
    quota   QuotaStore
}

// NewTransportPool builds a pool over the given active transports.
// It fails with ErrNoActiveTransports when no transport could take even
// one send right now, which lets the controller refuse a run up front.
func NewTransportPool(servers []model.SMTPServer, quota QuotaStore) (*TransportPool, error) {
    usable := false
    for i := range servers {
        if servers[i].Usable() {
            usable = true
            break
        }
    }
    if !usable {
        return nil, apperrors.ErrNoActiveTransports
    }
    return &TransportPool{servers: servers, quota: quota}, nil
}

// AcquireNext returns the next transport with quota left, starting at the
// rotating cursor, and claims one quota slot on it. After one full
// fruitless rotation it reports ErrPoolExhausted. The claimed slot is
// final on delivery success; a failed delivery must hand it back with
// Release.
func (p *TransportPool) AcquireNext() (*model.SMTPServer, error) {
    p.mu.Lock()
    defer p.mu.Unlock()

    for i := 0; i < len(p.servers); i++ {
        idx := (p.cursor + i) % len(p.servers)
        server := &p.servers[idx]

        reserved, err := p.quota.ReserveQuotaSlot(server.ID)
        if err != nil {
            return nil, err
        }
        if !reserved {
            continue
        }

        server.EmailsSentToday++
        p.cursor = idx + 1
        return server, nil
    }
    return nil, apperrors.ErrPoolExhausted
}

// Release returns a claimed quota slot after a failed delivery.
func (p *TransportPool) Release(server *model.SMTPServer) error {
    p.mu.Lock()
    if server.EmailsSentToday > 0 {
        server.EmailsSentToday--
    }
    p.mu.Unlock()
    return p.quota.ReleaseQuotaSlot(server.ID)
}

// Size reports how many transports the pool rotates over.
func (p *TransportPool) Size() int {
    return len(p.servers)
}
