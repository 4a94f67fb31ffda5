package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quiz-economy-service/internal/domain"
)

// envelope is the body of every JSON response.
type envelope struct {
	Error   bool   `json:"error"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any, isErr bool, msg string) error {
	resp := envelope{Error: isErr, Message: msg}
	if !isErr {
		resp.Data = data
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(resp)
}

func ok(w http.ResponseWriter, status int, data any) {
	_ = writeJSON(w, status, data, false, "")
}

func fail(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, nil, true, msg)
}

// statusFor maps domain errors onto HTTP statuses and client-facing messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, "quiz not found"
	case errors.Is(err, domain.ErrHistoryNotFound):
		return http.StatusNotFound, "history not found"
	case errors.Is(err, domain.ErrRewardNotFound):
		return http.StatusNotFound, "reward not found"
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound, "player not found"
	case errors.Is(err, domain.ErrNotOwned):
		return http.StatusForbidden, "not owned by caller"
	case errors.Is(err, domain.ErrIneligible):
		return http.StatusBadRequest, "not eligible for a reward"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient balance"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
