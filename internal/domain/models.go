package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quiz is the metadata of an authored quiz. Reward is the name written into
// rewards collected for it.
type Quiz struct {
	ID          int64     `json:"id"`
	PlayerID    uuid.UUID `json:"playerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Shared      bool      `json:"shared"`
	Reward      string    `json:"reward"`
}

// Player is the subset of a player record the economy touches.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Balance  int64     `json:"balance"`
}

// Question is only stored so quizzes can be counted.
type Question struct {
	ID     int64  `json:"id"`
	QuizID int64  `json:"quizId"`
	Text   string `json:"text"`
}

// PlayHistory is one recorded attempt of a quiz.
type PlayHistory struct {
	ID             int64     `json:"id"`
	PlayerID       uuid.UUID `json:"playerId"`
	QuizID         int64     `json:"quizId"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	Effectiveness  float64   `json:"effectiveness"`
	Timestamp      time.Time `json:"timestamp"`
}

// HistoryInput is what a player submits after playing.
type HistoryInput struct {
	QuizID         int64     `json:"quizId"`
	CorrectAnswers int       `json:"correctAnswers"`
	Timestamp      time.Time `json:"timestamp"`
}

// Reward is a valued token owned by exactly one player.
type Reward struct {
	ID       int64     `json:"id"`
	PlayerID uuid.UUID `json:"playerId"`
	QuizID   int64     `json:"quizId"`
	Reward   string    `json:"reward"`
	Value    int64     `json:"value"`
}

// RewardUpdate renames a reward; nil means keep. Value is never editable:
// it is fixed at collection and carried along by the shop.
type RewardUpdate struct {
	Reward *string `json:"reward,omitempty"`
}

// ShopListing is a reward detached from its owner and up for sale.
type ShopListing struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Value  int64  `json:"value"`
	QuizID int64  `json:"quizId"`
}

// ShopEventType tells subscribers what happened to a listing.
type ShopEventType string

const (
	ShopEventListed ShopEventType = "listed"
	ShopEventBought ShopEventType = "bought"
)

// ShopEvent is published after a sell or buy commits.
type ShopEvent struct {
	Type     ShopEventType `json:"type"`
	Listing  ShopListing   `json:"listing"`
	PlayerID uuid.UUID     `json:"playerId"`
	At       time.Time     `json:"at"`
}
