// internal/handler/list_handler.go
package handler

import (
    "encoding/json"
    "net/http"

    "github.com/go-chi/chi/v5"

    "github.com/unclebandit/sendmulticamp/internal/auth"
    "github.com/unclebandit/sendmulticamp/internal/model"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

type ListHandler struct {
    Lists       repository.ListRepositoryInterface
    Subscribers repository.SubscriberRepositoryInterface
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Name        string `json:"name"`
        Description string `json:"description"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }
    if body.Name == "" {
        writeError(w, http.StatusBadRequest, "name is required")
        return
    }

    list := &model.List{
        UserID:      auth.UserID(r.Context()),
        Name:        body.Name,
        Description: body.Description,
    }
    if err := h.Lists.Create(list); err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, list)
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
    lists, err := h.Lists.ListByUser(auth.UserID(r.Context()))
    if err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, lists)
}

func (h *ListHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
    listID := chi.URLParam(r, "listId")

    // Ownership check before exposing subscribers.
    if _, err := h.Lists.GetByID(listID, auth.UserID(r.Context())); err != nil {
        writeRepoError(w, err)
        return
    }

    subscribers, err := h.Subscribers.ListByList(listID)
    if err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, subscribers)
}

func (h *ListHandler) AddSubscriber(w http.ResponseWriter, r *http.Request) {
    listID := chi.URLParam(r, "listId")

    if _, err := h.Lists.GetByID(listID, auth.UserID(r.Context())); err != nil {
        writeRepoError(w, err)
        return
    }

    var body struct {
        Email     string `json:"email"`
        FirstName string `json:"first_name"`
        LastName  string `json:"last_name"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }
    if body.Email == "" {
        writeError(w, http.StatusBadRequest, "email is required")
        return
    }

    sub := &model.Subscriber{
        ListID:    listID,
        Email:     body.Email,
        FirstName: body.FirstName,
        LastName:  body.LastName,
        Status:    model.SubscriberActive,
    }
    if err := h.Subscribers.Create(sub); err != nil {
        if repository.IsDuplicate(err) {
            writeError(w, http.StatusBadRequest, "subscriber already exists in this list")
            return
        }
        writeRepoError(w, err)
        return
    }
    writeJSON(w, sub)
}
