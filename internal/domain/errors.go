package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrHistoryNotFound is returned for an unknown play history ID.
	ErrHistoryNotFound = errors.New("history not found")
	// ErrRewardNotFound is returned for an unknown reward ID.
	ErrRewardNotFound = errors.New("reward not found")
	// ErrListingNotFound is returned for an unknown shop listing ID.
	ErrListingNotFound = errors.New("shop listing not found")
	// ErrPlayerNotFound is returned when a balance is touched for an unknown player.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrNotOwned is returned when a player acts on another player's row.
	ErrNotOwned = errors.New("not owned by player")
	// ErrIneligible means no play history qualifies for the quiz reward.
	ErrIneligible = errors.New("no eligible history for reward")
	// ErrInsufficientFunds is returned when a buyer cannot afford a listing.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidInput covers submissions that cannot be scored, e.g. a quiz without questions.
	ErrInvalidInput = errors.New("invalid input")
)
