// internal/mailer/mailer.go
package mailer

import (
    "context"

    "github.com/unclebandit/sendmulticamp/internal/model"
)

// Message is a fully-formed email ready for delivery. Both bodies are
// always populated by the renderer before a message reaches a Sender.
type Message struct {
    From    string
    To      string
    Subject string
    Text    string
    HTML    string
    ReplyTo string
}

// Sender delivers a message through a specific transport. Implementations
// own their own connection timeouts; the dispatch loop treats Send as a
// blocking call that either succeeds or returns the delivery error.
type Sender interface {
    Send(ctx context.Context, server *model.SMTPServer, msg Message) error
}
