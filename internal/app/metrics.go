package app

import (
	"errors"

	"quiz-economy-service/internal/domain"
)

// Metrics receives one observation per use case call.
type Metrics interface {
	HistoryRecorded(outcome string)
	RewardCollected(outcome string)
	Exchanged(op, outcome string)
}

// NopMetrics discards observations.
type NopMetrics struct{}

func (NopMetrics) HistoryRecorded(string)   {}
func (NopMetrics) RewardCollected(string)   {}
func (NopMetrics) Exchanged(string, string) {}

// Outcome turns a use case error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotOwned):
		return "not_owned"
	case errors.Is(err, domain.ErrIneligible):
		return "ineligible"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrHistoryNotFound),
		errors.Is(err, domain.ErrRewardNotFound),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrPlayerNotFound):
		return "not_found"
	default:
		return "error"
	}
}
