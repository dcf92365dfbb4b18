// internal/mailer/smtp.go
package mailer

import (
    "context"
    "crypto/tls"
    "fmt"
    "mime"
    "net"
    "net/smtp"
    "strings"
    "time"

    "github.com/unclebandit/sendmulticamp/internal/model"
)

// SMTPSender delivers messages over plain SMTP using the per-transport
// credentials stored on the SMTP server record.
type SMTPSender struct {
    // DialTimeout bounds the connection attempt. Zero means 30s.
    DialTimeout time.Duration
}

func (s *SMTPSender) Send(ctx context.Context, server *model.SMTPServer, msg Message) error {
    addr := fmt.Sprintf("%s:%d", server.Host, server.Port)

    timeout := s.DialTimeout
    if timeout == 0 {
        timeout = 30 * time.Second
    }
    dialer := &net.Dialer{Timeout: timeout}

    var conn net.Conn
    var err error
    if server.UseTLS {
        conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: server.Host})
    } else {
        conn, err = dialer.DialContext(ctx, "tcp", addr)
    }
    if err != nil {
        return fmt.Errorf("connect %s: %w", addr, err)
    }

    client, err := smtp.NewClient(conn, server.Host)
    if err != nil {
        conn.Close()
        return err
    }
    defer client.Close()

    if !server.UseTLS {
        if ok, _ := client.Extension("STARTTLS"); ok {
            if err := client.StartTLS(&tls.Config{ServerName: server.Host}); err != nil {
                return fmt.Errorf("starttls: %w", err)
            }
        }
    }

    if server.Username != "" {
        a := smtp.PlainAuth("", server.Username, server.Password, server.Host)
        if err := client.Auth(a); err != nil {
            return fmt.Errorf("auth: %w", err)
        }
    }

    fromAddr := extractAddr(msg.From)
    if err := client.Mail(fromAddr); err != nil {
        return err
    }
    if err := client.Rcpt(msg.To); err != nil {
        return err
    }

    w, err := client.Data()
    if err != nil {
        return err
    }
    if _, err := w.Write(buildMIME(msg)); err != nil {
        return err
    }
    if err := w.Close(); err != nil {
        return err
    }
    return client.Quit()
}

// buildMIME assembles a multipart/alternative message with text and HTML
// parts so clients can pick whichever they render.
func buildMIME(msg Message) []byte {
    const boundary = "sendmulticamp-alt"

    var b strings.Builder
    fmt.Fprintf(&b, "From: %s\r\n", msg.From)
    fmt.Fprintf(&b, "To: %s\r\n", msg.To)
    if msg.ReplyTo != "" {
        fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
    }
    fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
    b.WriteString("MIME-Version: 1.0\r\n")
    fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
    b.WriteString("\r\n")

    fmt.Fprintf(&b, "--%s\r\n", boundary)
    b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
    b.WriteString(msg.Text)
    b.WriteString("\r\n")

    fmt.Fprintf(&b, "--%s\r\n", boundary)
    b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
    b.WriteString(msg.HTML)
    b.WriteString("\r\n")

    fmt.Fprintf(&b, "--%s--\r\n", boundary)
    return []byte(b.String())
}

// extractAddr pulls the bare address out of a `"Name" <addr>` header value.
func extractAddr(from string) string {
    if i := strings.LastIndex(from, "<"); i >= 0 {
        if j := strings.LastIndex(from, ">"); j > i {
            return from[i+1 : j]
        }
    }
    return from
}

var _ Sender = (*SMTPSender)(nil)
