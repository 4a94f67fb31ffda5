package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quiz-economy-service/internal/domain"
)

// HistoryService records play attempts and derives their effectiveness.
type HistoryService struct {
	store   Store
	quizzes QuizRepository
	metrics Metrics
	now     func() time.Time
}

func NewHistoryService(store Store, quizzes QuizRepository, metrics Metrics) *HistoryService {
	return newHistoryService(store, quizzes, metrics, time.Now)
}

func newHistoryService(store Store, quizzes QuizRepository, metrics Metrics, now func() time.Time) *HistoryService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &HistoryService{store: store, quizzes: quizzes, metrics: metrics, now: now}
}

// Effectiveness returns correct/total. A quiz without questions cannot be scored.
func Effectiveness(correct, total int) (float64, error) {
	if total <= 0 {
		return 0, fmt.Errorf("%w: quiz has no questions", domain.ErrInvalidInput)
	}
	if correct < 0 || correct > total {
		return 0, fmt.Errorf("%w: %d correct answers out of %d questions", domain.ErrInvalidInput, correct, total)
	}
	return float64(correct) / float64(total), nil
}

// Record appends a play attempt for playerID.
func (s *HistoryService) Record(ctx context.Context, playerID uuid.UUID, in domain.HistoryInput) (domain.PlayHistory, error) {
	h, err := s.record(ctx, playerID, in)
	s.metrics.HistoryRecorded(Outcome(err))
	return h, err
}

// record counts the questions and inserts in one transaction, so the stored
// total is the count the effectiveness was computed against.
func (s *HistoryService) record(ctx context.Context, playerID uuid.UUID, in domain.HistoryInput) (domain.PlayHistory, error) {
	var recorded domain.PlayHistory
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Repositories) error {
		h, err := s.score(ctx, tx, playerID, in)
		if err != nil {
			return err
		}
		recorded, err = tx.Histories().Insert(ctx, h)
		return err
	})
	if err != nil {
		return domain.PlayHistory{}, err
	}
	return recorded, nil
}

// Amend replaces a history's input and re-derives the score against the
// quiz's current question count, not the count at the time of play.
func (s *HistoryService) Amend(ctx context.Context, historyID int64, playerID uuid.UUID, in domain.HistoryInput) (domain.PlayHistory, error) {
	var updated domain.PlayHistory
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Repositories) error {
		existing, err := tx.Histories().Get(ctx, historyID)
		if err != nil {
			return err
		}
		if existing.PlayerID != playerID {
			return domain.ErrNotOwned
		}
		h, err := s.score(ctx, tx, playerID, in)
		if err != nil {
			return err
		}
		h.ID = existing.ID
		updated, err = tx.Histories().Update(ctx, h)
		return err
	})
	if err != nil {
		return domain.PlayHistory{}, err
	}
	return updated, nil
}

// Delete removes one of playerID's histories.
func (s *HistoryService) Delete(ctx context.Context, historyID int64, playerID uuid.UUID) error {
	return s.store.RunInTx(ctx, func(ctx context.Context, tx Repositories) error {
		existing, err := tx.Histories().Get(ctx, historyID)
		if err != nil {
			return err
		}
		if existing.PlayerID != playerID {
			return domain.ErrNotOwned
		}
		return tx.Histories().Delete(ctx, historyID)
	})
}

func (s *HistoryService) Get(ctx context.Context, historyID int64) (domain.PlayHistory, error) {
	return s.store.Histories().Get(ctx, historyID)
}

func (s *HistoryService) List(ctx context.Context) ([]domain.PlayHistory, error) {
	return s.store.Histories().List(ctx)
}

func (s *HistoryService) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.PlayHistory, error) {
	return s.store.Histories().ListByPlayer(ctx, playerID)
}

func (s *HistoryService) ListByQuizAndPlayer(ctx context.Context, quizID int64, playerID uuid.UUID) ([]domain.PlayHistory, error) {
	return s.store.Histories().ListByQuizAndPlayer(ctx, quizID, playerID)
}

func (s *HistoryService) score(ctx context.Context, repos Repositories, playerID uuid.UUID, in domain.HistoryInput) (domain.PlayHistory, error) {
	if _, err := s.quizzes.GetQuiz(ctx, in.QuizID); err != nil {
		return domain.PlayHistory{}, err
	}
	total, err := repos.Questions().CountByQuiz(ctx, in.QuizID)
	if err != nil {
		return domain.PlayHistory{}, err
	}
	effectiveness, err := Effectiveness(in.CorrectAnswers, total)
	if err != nil {
		return domain.PlayHistory{}, err
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	return domain.PlayHistory{
		PlayerID:       playerID,
		QuizID:         in.QuizID,
		CorrectAnswers: in.CorrectAnswers,
		TotalQuestions: total,
		Effectiveness:  effectiveness,
		Timestamp:      ts.UTC(),
	}, nil
}
