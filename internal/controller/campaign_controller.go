// internal/controller/campaign_controller.go
package controller

import (
    "encoding/json"
    "errors"
    "net/http"

    "github.com/go-chi/chi/v5"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/auth"
    "github.com/unclebandit/sendmulticamp/internal/model"
    "github.com/unclebandit/sendmulticamp/internal/service"
)

type CampaignController struct {
    Campaigns *service.CampaignService
}

func (c *CampaignController) Create(w http.ResponseWriter, r *http.Request) {
    var in service.CampaignInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }

    campaign, err := c.Campaigns.Create(auth.UserID(r.Context()), in)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, campaign)
}

func (c *CampaignController) List(w http.ResponseWriter, r *http.Request) {
    campaigns, err := c.Campaigns.List(auth.UserID(r.Context()))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, campaigns)
}

func (c *CampaignController) Get(w http.ResponseWriter, r *http.Request) {
    campaign, err := c.Campaigns.Get(chi.URLParam(r, "id"), auth.UserID(r.Context()))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, campaign)
}

func (c *CampaignController) Update(w http.ResponseWriter, r *http.Request) {
    var in service.CampaignInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }

    campaign, err := c.Campaigns.Update(chi.URLParam(r, "id"), auth.UserID(r.Context()), in)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, campaign)
}

func (c *CampaignController) Delete(w http.ResponseWriter, r *http.Request) {
    if err := c.Campaigns.Delete(chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, map[string]bool{"success": true})
}

func (c *CampaignController) Duplicate(w http.ResponseWriter, r *http.Request) {
    campaign, err := c.Campaigns.Duplicate(chi.URLParam(r, "id"), auth.UserID(r.Context()))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, campaign)
}

// Send triggers a dispatch run. The response acknowledges acceptance; the
// run itself continues after this handler returns.
func (c *CampaignController) Send(w http.ResponseWriter, r *http.Request) {
    result, err := c.Campaigns.Send(chi.URLParam(r, "id"), auth.UserID(r.Context()))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, map[string]interface{}{
        "success": true,
        "total":   result.Total,
    })
}

func (c *CampaignController) Progress(w http.ResponseWriter, r *http.Request) {
    progress, err := c.Campaigns.GetProgress(chi.URLParam(r, "id"), auth.UserID(r.Context()))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, progress)
}

func (c *CampaignController) Stats(w http.ResponseWriter, r *http.Request) {
    stats, err := c.Campaigns.GetStats(chi.URLParam(r, "id"), auth.UserID(r.Context()))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, stats)
}

func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
    var sample model.Subscriber
    if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }

    preview, err := c.Campaigns.RenderPreview(chi.URLParam(r, "id"), auth.UserID(r.Context()), sample)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, preview)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeServiceError maps the precondition error taxonomy onto HTTP codes.
func writeServiceError(w http.ResponseWriter, err error) {
    switch {
    case apperrors.IsNotFound(err):
        writeError(w, http.StatusNotFound, err.Error())
    case errors.Is(err, apperrors.ErrEmptyRecipients),
        errors.Is(err, apperrors.ErrNoActiveTransports),
        errors.Is(err, apperrors.ErrAlreadySending):
        writeError(w, http.StatusBadRequest, err.Error())
    case errors.Is(err, apperrors.ErrNotOwner):
        writeError(w, http.StatusForbidden, err.Error())
    default:
        writeError(w, http.StatusInternalServerError, err.Error())
    }
}
