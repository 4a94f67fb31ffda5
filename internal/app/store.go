package app

import (
	"context"

	"github.com/google/uuid"

	"quiz-economy-service/internal/domain"
)

// QuizRepository loads quiz metadata (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// QuestionCounter reports how many questions a quiz currently has.
type QuestionCounter interface {
	CountByQuiz(ctx context.Context, quizID int64) (int, error)
}

// HistoryRepository stores play histories. Lists are ordered by ascending ID.
type HistoryRepository interface {
	Insert(ctx context.Context, h domain.PlayHistory) (domain.PlayHistory, error)
	Get(ctx context.Context, id int64) (domain.PlayHistory, error)
	Update(ctx context.Context, h domain.PlayHistory) (domain.PlayHistory, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.PlayHistory, error)
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.PlayHistory, error)
	ListByQuizAndPlayer(ctx context.Context, quizID int64, playerID uuid.UUID) ([]domain.PlayHistory, error)
}

// RewardRepository stores collected rewards. Lists are ordered by ascending ID.
type RewardRepository interface {
	Insert(ctx context.Context, r domain.Reward) (domain.Reward, error)
	Get(ctx context.Context, id int64) (domain.Reward, error)
	// GetForUpdate reads a reward and holds it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (domain.Reward, error)
	Update(ctx context.Context, r domain.Reward) (domain.Reward, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Reward, error)
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Reward, error)
}

// ListingRepository stores shop listings. Lists are ordered by ascending ID.
type ListingRepository interface {
	Insert(ctx context.Context, l domain.ShopListing) (domain.ShopListing, error)
	Get(ctx context.Context, id int64) (domain.ShopListing, error)
	GetForUpdate(ctx context.Context, id int64) (domain.ShopListing, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.ShopListing, error)
}

// PlayerRepository owns player balances.
type PlayerRepository interface {
	Balance(ctx context.Context, playerID uuid.UUID) (int64, error)
	// AdjustBalance atomically adds delta and returns the new balance. It fails
	// with domain.ErrInsufficientFunds instead of going below zero.
	AdjustBalance(ctx context.Context, playerID uuid.UUID, delta int64) (int64, error)
}

// Repositories groups the ledgers a use case may touch.
type Repositories interface {
	Histories() HistoryRepository
	Rewards() RewardRepository
	Listings() ListingRepository
	Players() PlayerRepository
	Questions() QuestionCounter
}

// Store is a Repositories backend that can run a callback atomically. Any
// error returned by fn rolls back every write made through tx.
type Store interface {
	Repositories
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}
