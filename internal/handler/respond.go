// internal/handler/respond.go
package handler

import (
    "encoding/json"
    "errors"
    "net/http"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeRepoError(w http.ResponseWriter, err error) {
    switch {
    case apperrors.IsNotFound(err):
        writeError(w, http.StatusNotFound, err.Error())
    case errors.Is(err, apperrors.ErrNotOwner):
        writeError(w, http.StatusForbidden, err.Error())
    default:
        writeError(w, http.StatusInternalServerError, err.Error())
    }
}
