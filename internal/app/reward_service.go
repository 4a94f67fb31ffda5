package app

import (
	"context"

	"github.com/google/uuid"

	"quiz-economy-service/internal/domain"
)

// RewardService mints rewards for eligible players and manages owned rewards.
type RewardService struct {
	store   Store
	quizzes QuizRepository
	metrics Metrics
}

func NewRewardService(store Store, quizzes QuizRepository, metrics Metrics) *RewardService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &RewardService{store: store, quizzes: quizzes, metrics: metrics}
}

// Collect mints the quiz's reward for playerID if one of their attempts
// qualifies. Repeated calls mint repeated rewards.
func (s *RewardService) Collect(ctx context.Context, quizID int64, playerID uuid.UUID) (domain.Reward, error) {
	reward, err := s.collect(ctx, quizID, playerID)
	s.metrics.RewardCollected(Outcome(err))
	return reward, err
}

func (s *RewardService) collect(ctx context.Context, quizID int64, playerID uuid.UUID) (domain.Reward, error) {
	var reward domain.Reward
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Repositories) error {
		histories, err := tx.Histories().ListByQuizAndPlayer(ctx, quizID, playerID)
		if err != nil {
			return err
		}
		qualifying, err := Evaluate(histories)
		if err != nil {
			return err
		}
		name, err := s.RewardNameForQuiz(ctx, quizID)
		if err != nil {
			return err
		}
		reward, err = tx.Rewards().Insert(ctx, domain.Reward{
			PlayerID: playerID,
			QuizID:   quizID,
			Reward:   name,
			Value:    Payout(qualifying),
		})
		return err
	})
	if err != nil {
		return domain.Reward{}, err
	}
	return reward, nil
}

// RewardNameForQuiz returns the reward name configured by the quiz author.
func (s *RewardService) RewardNameForQuiz(ctx context.Context, quizID int64) (string, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}
	return quiz.Reward, nil
}

func (s *RewardService) Get(ctx context.Context, rewardID int64) (domain.Reward, error) {
	return s.store.Rewards().Get(ctx, rewardID)
}

func (s *RewardService) List(ctx context.Context) ([]domain.Reward, error) {
	return s.store.Rewards().List(ctx)
}

func (s *RewardService) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Reward, error) {
	return s.store.Rewards().ListByPlayer(ctx, playerID)
}

// Update renames one of playerID's rewards.
func (s *RewardService) Update(ctx context.Context, rewardID int64, playerID uuid.UUID, upd domain.RewardUpdate) (domain.Reward, error) {
	var updated domain.Reward
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Repositories) error {
		reward, err := tx.Rewards().GetForUpdate(ctx, rewardID)
		if err != nil {
			return err
		}
		if reward.PlayerID != playerID {
			return domain.ErrNotOwned
		}
		if upd.Reward != nil {
			reward.Reward = *upd.Reward
		}
		updated, err = tx.Rewards().Update(ctx, reward)
		return err
	})
	if err != nil {
		return domain.Reward{}, err
	}
	return updated, nil
}

// Delete discards one of playerID's rewards without compensation.
func (s *RewardService) Delete(ctx context.Context, rewardID int64, playerID uuid.UUID) error {
	return s.store.RunInTx(ctx, func(ctx context.Context, tx Repositories) error {
		reward, err := tx.Rewards().GetForUpdate(ctx, rewardID)
		if err != nil {
			return err
		}
		if reward.PlayerID != playerID {
			return domain.ErrNotOwned
		}
		return tx.Rewards().Delete(ctx, rewardID)
	})
}
