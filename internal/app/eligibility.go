package app

import "quiz-economy-service/internal/domain"

const (
	// EligibilityThreshold is the minimum effectiveness that qualifies an attempt.
	EligibilityThreshold = 0.75
	// PayoutPerQuestion scales a qualifying attempt's question count into reward value.
	PayoutPerQuestion = 10
)

// Evaluate picks the attempt that pays out a reward: the earliest recorded
// (lowest ID) attempt at or above the threshold. Every entry is inspected, so
// the result does not depend on slice order.
func Evaluate(histories []domain.PlayHistory) (domain.PlayHistory, error) {
	var (
		picked domain.PlayHistory
		found  bool
	)
	for _, h := range histories {
		if h.Effectiveness < EligibilityThreshold {
			continue
		}
		if !found || h.ID < picked.ID {
			picked = h
			found = true
		}
	}
	if !found {
		return domain.PlayHistory{}, domain.ErrIneligible
	}
	return picked, nil
}

// Payout is the reward value earned by a qualifying attempt.
func Payout(h domain.PlayHistory) int64 {
	return int64(h.TotalQuestions) * PayoutPerQuestion
}
