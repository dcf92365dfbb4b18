// internal/handler/auth_handler.go
package handler

import (
    "encoding/json"
    "net/http"

    "github.com/unclebandit/sendmulticamp/internal/auth"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

type AuthHandler struct {
    Auth  *auth.Service
    Users repository.UserRepositoryInterface
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Email    string `json:"email"`
        Password string `json:"password"`
        FullName string `json:"fullName"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }
    if body.Email == "" || body.Password == "" {
        writeError(w, http.StatusBadRequest, "email and password are required")
        return
    }

    session, err := h.Auth.Register(body.Email, body.Password, body.FullName)
    if err != nil {
        if repository.IsDuplicate(err) {
            writeError(w, http.StatusBadRequest, "email already registered")
            return
        }
        writeError(w, http.StatusBadRequest, err.Error())
        return
    }
    writeJSON(w, session)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }

    session, err := h.Auth.Login(body.Email, body.Password)
    if err != nil {
        writeError(w, http.StatusUnauthorized, "invalid credentials")
        return
    }
    writeJSON(w, session)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
    user, err := h.Users.GetByID(auth.UserID(r.Context()))
    if err != nil {
        writeRepoError(w, err)
        return
    }
    writeJSON(w, map[string]interface{}{"user": user})
}
