package cli

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quiz-economy-service/internal/domain"
	"quiz-economy-service/internal/infra/memory"
	transport "quiz-economy-service/internal/transport/http"
)

// Fixed IDs so local tokens survive restarts.
var (
	sampleAuthor = uuid.MustParse("2b7c6f0e-4d1a-4a53-9c1e-5f0d7b2c9a11")
	samplePlayer = uuid.MustParse("8e3f1a24-6b5c-4f7d-a2e9-0c4b6d8f1e35")
)

// seedSample fills an in-memory store with a small catalog and two players,
// then logs a day-long token for each so the API can be tried by hand.
func seedSample(store *memory.Store, auth *transport.Authenticator, logger *slog.Logger) {
	store.PutPlayer(domain.Player{ID: sampleAuthor, Username: "author", Balance: 100})
	store.PutPlayer(domain.Player{ID: samplePlayer, Username: "player"})

	store.PutQuiz(domain.Quiz{
		ID:          1,
		PlayerID:    sampleAuthor,
		Title:       "World capitals",
		Description: "Name the capital city.",
		Shared:      true,
		Reward:      "Golden Globe",
	})
	for _, q := range []string{"France", "Japan", "Kenya", "Peru"} {
		store.AddQuestion(1, "Capital of "+q+"?")
	}

	store.PutQuiz(domain.Quiz{
		ID:       2,
		PlayerID: sampleAuthor,
		Title:    "Basic arithmetic",
		Shared:   true,
		Reward:   "Abacus",
	})
	store.AddQuestion(2, "2 + 2?")
	store.AddQuestion(2, "3 * 3?")

	for _, p := range []struct {
		name string
		id   uuid.UUID
	}{{"author", sampleAuthor}, {"player", samplePlayer}} {
		tok, err := auth.SignToken(p.id, 24*time.Hour)
		if err != nil {
			logger.Warn("sign sample token", "player", p.name, "error", err)
			continue
		}
		logger.Info("sample player", "name", p.name, "id", p.id, "token", tok)
	}
}
