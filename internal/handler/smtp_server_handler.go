// internal/handler/smtp_server_handler.go
package handler

import (
    "encoding/json"
    "fmt"
    "net/http"

    "github.com/go-chi/chi/v5"

    "github.com/unclebandit/sendmulticamp/internal/auth"
    "github.com/unclebandit/sendmulticamp/internal/mailer"
    "github.com/unclebandit/sendmulticamp/internal/model"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

type SMTPServerHandler struct {
    Servers repository.SMTPServerRepositoryInterface
    Mailer  mailer.Sender
}

type smtpServerInput struct {
    Name       *string `json:"name"`
    Host       *string `json:"host"`
    Port       *int    `json:"port"`
    Username   *string `json:"username"`
    Password   *string `json:"password"`
    UseTLS     *bool   `json:"use_tls"`
    DailyLimit *int    `json:"daily_limit"`
    IsActive   *bool   `json:"is_active"`
}

func (h *SMTPServerHandler) Create(w http.ResponseWriter, r *http.Request) {
    var in smtpServerInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }
    if in.Name == nil || in.Host == nil || in.Port == nil {
        writeError(w, http.StatusBadRequest, "name, host and port are required")
        return
    }

    server := &model.SMTPServer{
        UserID:   auth.UserID(r.Context()),
        Name:     *in.Name,
        Host:     *in.Host,
        Port:     *in.Port,
        IsActive: true,
    }
    if in.Username != nil {
        server.Username = *in.Username
    }
    if in.Password != nil {
        server.Password = *in.Password
    }
    if in.UseTLS != nil {
        server.UseTLS = *in.UseTLS
    }
    if in.DailyLimit != nil {
        server.DailyLimit = *in.DailyLimit
    }
    if in.IsActive != nil {
        server.IsActive = *in.IsActive
    }

    if err := h.Servers.Create(server); err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, server)
}

func (h *SMTPServerHandler) List(w http.ResponseWriter, r *http.Request) {
    servers, err := h.Servers.ListByUser(auth.UserID(r.Context()))
    if err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, servers)
}

func (h *SMTPServerHandler) Update(w http.ResponseWriter, r *http.Request) {
    server, err := h.Servers.GetByID(chi.URLParam(r, "id"), auth.UserID(r.Context()))
    if err != nil {
        writeRepoError(w, err)
        return
    }

    var in smtpServerInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }

    if in.Name != nil {
        server.Name = *in.Name
    }
    if in.Host != nil {
        server.Host = *in.Host
    }
    if in.Port != nil {
        server.Port = *in.Port
    }
    if in.Username != nil {
        server.Username = *in.Username
    }
    if in.Password != nil {
        server.Password = *in.Password
    }
    if in.UseTLS != nil {
        server.UseTLS = *in.UseTLS
    }
    if in.DailyLimit != nil {
        server.DailyLimit = *in.DailyLimit
    }
    if in.IsActive != nil {
        server.IsActive = *in.IsActive
    }

    if err := h.Servers.Update(server); err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, server)
}

func (h *SMTPServerHandler) Delete(w http.ResponseWriter, r *http.Request) {
    if err := h.Servers.Delete(chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, map[string]bool{"success": true})
}

// Test sends a test email through the transport to verify its
// configuration end to end.
func (h *SMTPServerHandler) Test(w http.ResponseWriter, r *http.Request) {
    server, err := h.Servers.GetByID(chi.URLParam(r, "id"), auth.UserID(r.Context()))
    if err != nil {
        writeRepoError(w, err)
        return
    }

    var body struct {
        ToEmail string `json:"to_email"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ToEmail == "" {
        writeError(w, http.StatusBadRequest, "email address required")
        return
    }

    msg := mailer.Message{
        From:    fmt.Sprintf("%q <%s>", server.Name, server.Username),
        To:      body.ToEmail,
        Subject: "Test Email from SendMultiCamp",
        Text: fmt.Sprintf(
            "This is a test email sent through SMTP server %s (%s:%d).\n\nIf you received this email, your SMTP configuration is working correctly.",
            server.Name, server.Host, server.Port,
        ),
        HTML: fmt.Sprintf(
            "<p>This is a test email sent through SMTP server <strong>%s</strong> (%s:%d).</p><p>If you received this email, your SMTP configuration is working correctly.</p>",
            server.Name, server.Host, server.Port,
        ),
    }

    if err := h.Mailer.Send(r.Context(), server, msg); err != nil {
        writeError(w, http.StatusInternalServerError, err.Error())
        return
    }
    writeJSON(w, map[string]interface{}{
        "success": true,
        "message": "Test email sent successfully",
    })
}
