package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"finance-tracker-go/internal/store"

	"go.uber.org/zap"
)

const (
	kindValidation   = "validation"
	kindUnauthorized = "unauthorized"
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindInternal     = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

var errorKinds = []struct {
	sentinel error
	status   int
	kind     string
}{
	{store.ErrValidation, http.StatusBadRequest, kindValidation},
	{store.ErrUnauthorized, http.StatusUnauthorized, kindUnauthorized},
	{store.ErrNotFound, http.StatusNotFound, kindNotFound},
	{store.ErrConflict, http.StatusConflict, kindConflict},
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			zap.L().Warn("Failed to encode response", zap.Error(err))
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, message, kind string) {
	respondWithJSON(w, code, errorResponse{Error: message, Kind: kind})
}

// respondWithServiceError maps classified errors to their status. Anything
// else is a 500 with an opaque message.
func respondWithServiceError(w http.ResponseWriter, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.sentinel) {
			message := strings.TrimPrefix(err.Error(), k.sentinel.Error()+": ")
			respondWithError(w, k.status, message, k.kind)
			return
		}
	}
	respondWithError(w, http.StatusInternalServerError, "Internal server error", kindInternal)
}

// decodeJSON reads the request body into dst and writes the error response
// itself when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large", kindValidation)
			return false
		}
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", kindValidation)
		return false
	}
	return true
}
