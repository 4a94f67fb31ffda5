package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-economy-service/internal/domain"
)

// QuizLoader loads quiz metadata from Postgres.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var (
		quiz     = domain.Quiz{ID: quizID}
		playerID string
	)
	err := l.pool.QueryRow(ctx,
		`SELECT player_id::text, title, description, shared, reward FROM quizzes WHERE id=$1`, quizID,
	).Scan(&playerID, &quiz.Title, &quiz.Description, &quiz.Shared, &quiz.Reward)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	if quiz.PlayerID, err = uuid.Parse(playerID); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse quiz author: %w", err)
	}
	return quiz, nil
}
