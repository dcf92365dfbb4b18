// internal/handler/suppression_handler.go
package handler

import (
    "encoding/json"
    "net/http"

    "github.com/go-chi/chi/v5"

    "github.com/unclebandit/sendmulticamp/internal/auth"
    "github.com/unclebandit/sendmulticamp/internal/model"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

type SuppressionHandler struct {
    Suppressions repository.SuppressionRepositoryInterface
}

func (h *SuppressionHandler) ListBlacklist(w http.ResponseWriter, r *http.Request) {
    entries, err := h.Suppressions.ListBlacklist(auth.UserID(r.Context()))
    if err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, entries)
}

func (h *SuppressionHandler) AddToBlacklist(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Email  string `json:"email"`
        Reason string `json:"reason"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }
    if body.Email == "" {
        writeError(w, http.StatusBadRequest, "email is required")
        return
    }

    entry := &model.BlacklistEntry{
        UserID: auth.UserID(r.Context()),
        Email:  body.Email,
        Reason: body.Reason,
    }
    if err := h.Suppressions.AddToBlacklist(entry); err != nil {
        if repository.IsDuplicate(err) {
            writeError(w, http.StatusBadRequest, "email already in blacklist")
            return
        }
        writeRepoError(w, err)
        return
    }
    writeJSON(w, entry)
}

func (h *SuppressionHandler) RemoveFromBlacklist(w http.ResponseWriter, r *http.Request) {
    if err := h.Suppressions.RemoveFromBlacklist(chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, map[string]bool{"success": true})
}

func (h *SuppressionHandler) ListUnsubscribes(w http.ResponseWriter, r *http.Request) {
    entries, err := h.Suppressions.ListUnsubscribes(auth.UserID(r.Context()))
    if err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, entries)
}

func (h *SuppressionHandler) AddUnsubscribe(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Email      string  `json:"email"`
        ListID     *string `json:"list_id"`
        CampaignID *string `json:"campaign_id"`
        Reason     string  `json:"reason"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }
    if body.Email == "" {
        writeError(w, http.StatusBadRequest, "email is required")
        return
    }

    entry := &model.UnsubscribeEntry{
        UserID:     auth.UserID(r.Context()),
        Email:      body.Email,
        ListID:     body.ListID,
        CampaignID: body.CampaignID,
        Reason:     body.Reason,
    }
    if err := h.Suppressions.AddUnsubscribe(entry); err != nil {
        if repository.IsDuplicate(err) {
            writeError(w, http.StatusBadRequest, "email already unsubscribed")
            return
        }
        writeRepoError(w, err)
        return
    }
    writeJSON(w, entry)
}

func (h *SuppressionHandler) RemoveUnsubscribe(w http.ResponseWriter, r *http.Request) {
    if err := h.Suppressions.RemoveUnsubscribe(chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, map[string]bool{"success": true})
}
