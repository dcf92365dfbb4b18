// internal/apperrors/errors.go
package apperrors

import (
    "errors"
    "fmt"
)

// Precondition errors surfaced synchronously to the API caller. None of
// them leaves any state mutated.
var (
    ErrEmptyRecipients    = errors.New("no valid subscribers to send to (all blacklisted or unsubscribed)")
    ErrNoActiveTransports = errors.New("no active SMTP servers with remaining quota")
    ErrAlreadySending     = errors.New("campaign is already sending")
    ErrNotOwner           = errors.New("resource does not belong to the requesting user")
)

// ErrPoolExhausted is returned by the transport pool once a full rotation
// finds no transport with quota left. It is never surfaced to an API caller;
// the dispatch loop translates it into skipped ledger rows.
var ErrPoolExhausted = errors.New("all SMTP servers reached their daily limit")

// NotFoundError identifies a missing (or foreign-owned) resource by kind.
type NotFoundError struct {
    Kind string
    ID   string
}

func (e *NotFoundError) Error() string {
    return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NewNotFound(kind, id string) error {
    return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
    var nf *NotFoundError
    return errors.As(err, &nf)
}
