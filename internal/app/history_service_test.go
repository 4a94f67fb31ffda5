package app_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"quiz-economy-service/internal/app"
	"quiz-economy-service/internal/domain"
	"quiz-economy-service/internal/infra/memory"
)

func TestEffectiveness(t *testing.T) {
	cases := []struct {
		correct, total int
		want           float64
	}{
		{0, 1, 0},
		{1, 1, 1},
		{3, 4, 0.75},
		{2, 3, 2.0 / 3.0},
		{7, 10, 0.7},
	}
	for _, c := range cases {
		got, err := app.Effectiveness(c.correct, c.total)
		if err != nil {
			t.Fatalf("Effectiveness(%d,%d) error: %v", c.correct, c.total, err)
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("Effectiveness(%d,%d)=%v, want %v", c.correct, c.total, got, c.want)
		}
	}

	for _, bad := range [][2]int{{0, 0}, {1, 0}, {-1, 4}, {5, 4}} {
		if _, err := app.Effectiveness(bad[0], bad[1]); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("Effectiveness(%d,%d) expected invalid input, got %v", bad[0], bad[1], err)
		}
	}
}

func TestRecordComputesEffectiveness(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	h, err := env.histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: quizFour, CorrectAnswers: 3})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if h.ID == 0 || h.TotalQuestions != 4 || h.Effectiveness != 0.75 {
		t.Fatalf("unexpected history %+v", h)
	}
	if !h.Timestamp.Equal(fixedNow) {
		t.Fatalf("expected default timestamp %v, got %v", fixedNow, h.Timestamp)
	}

	listed, err := env.histories.ListByPlayer(ctx, env.alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != h.ID {
		t.Fatalf("expected recorded history listed, got %+v", listed)
	}
}

func TestRecordRejectsQuizWithoutQuestions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: quizEmpty, CorrectAnswers: 0})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	all, _ := env.histories.List(ctx)
	if len(all) != 0 {
		t.Fatalf("expected no history rows, got %+v", all)
	}
}

func TestRecordRejectsUnknownQuizAndBadCounts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	if _, err := env.histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: 404}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if _, err := env.histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: quizFour, CorrectAnswers: 5}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for too many correct answers, got %v", err)
	}
}

func TestAmendUsesCurrentQuestionCount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	h, err := env.histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: quizFour, CorrectAnswers: 2})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	env.store.AddQuestion(quizFour, "extra")

	amended, err := env.histories.Amend(ctx, h.ID, env.alice, domain.HistoryInput{
		QuizID:         quizFour,
		CorrectAnswers: 4,
		Timestamp:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if amended.ID != h.ID || amended.TotalQuestions != 5 || amended.Effectiveness != 0.8 {
		t.Fatalf("expected recompute against 5 questions, got %+v", amended)
	}

	stored, _ := env.histories.Get(ctx, h.ID)
	if stored.CorrectAnswers != 4 || stored.TotalQuestions != 5 {
		t.Fatalf("expected amended row persisted, got %+v", stored)
	}
}

func TestAmendAndDeleteCheckOwnership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	h, err := env.histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: quizFour, CorrectAnswers: 1})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := env.histories.Amend(ctx, h.ID, env.bob, domain.HistoryInput{QuizID: quizFour, CorrectAnswers: 4}); !errors.Is(err, domain.ErrNotOwned) {
		t.Fatalf("expected not owned on amend, got %v", err)
	}
	if err := env.histories.Delete(ctx, h.ID, env.bob); !errors.Is(err, domain.ErrNotOwned) {
		t.Fatalf("expected not owned on delete, got %v", err)
	}
	if _, err := env.histories.Amend(ctx, 999, env.alice, domain.HistoryInput{QuizID: quizFour}); !errors.Is(err, domain.ErrHistoryNotFound) {
		t.Fatalf("expected history not found, got %v", err)
	}

	if err := env.histories.Delete(ctx, h.ID, env.alice); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.histories.Get(ctx, h.ID); !errors.Is(err, domain.ErrHistoryNotFound) {
		t.Fatalf("expected deleted history gone, got %v", err)
	}
}

func TestAmendToEmptyQuizLeavesRowUnchanged(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	h, _ := env.histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: quizFour, CorrectAnswers: 3})
	if _, err := env.histories.Amend(ctx, h.ID, env.alice, domain.HistoryInput{QuizID: quizEmpty}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	stored, _ := env.histories.Get(ctx, h.ID)
	if stored != h {
		t.Fatalf("expected row unchanged, got %+v want %+v", stored, h)
	}
}

const (
	quizFour  int64 = 1 // four questions
	quizTwo   int64 = 2 // two questions
	quizEmpty int64 = 3 // no questions
)

func TestRecordRunsInOneTransaction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	spy := &txSpyStore{Store: env.store}
	quizzes := memory.NewQuizRepository(env.store, time.Minute)
	histories := app.NewHistoryService(spy, quizzes, nil)

	if _, err := histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: quizFour, CorrectAnswers: 2}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if spy.txs != 1 || spy.outside != 0 {
		t.Fatalf("expected one transaction and no direct writes, got txs=%d outside=%d", spy.txs, spy.outside)
	}
}

func TestRecordWithCanceledContextStoresNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env := newTestEnv(t)

	if _, err := env.histories.Record(ctx, env.alice, domain.HistoryInput{QuizID: quizFour, CorrectAnswers: 4}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if all, _ := env.histories.List(context.Background()); len(all) != 0 {
		t.Fatalf("expected no history rows, got %+v", all)
	}
}

// txSpyStore counts transactions and direct history repository use.
type txSpyStore struct {
	*memory.Store
	txs     int
	outside int
}

func (s *txSpyStore) Histories() app.HistoryRepository {
	s.outside++
	return s.Store.Histories()
}

func (s *txSpyStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Repositories) error) error {
	s.txs++
	return s.Store.RunInTx(ctx, fn)
}

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	store     *memory.Store
	metrics   *recordingMetrics
	histories *app.HistoryService
	rewards   *app.RewardService
	exchange  *app.ExchangeService
	alice     uuid.UUID
	bob       uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	alice, bob := uuid.New(), uuid.New()

	store.PutPlayer(domain.Player{ID: alice, Username: "alice", Balance: 0})
	store.PutPlayer(domain.Player{ID: bob, Username: "bob", Balance: 100})
	store.PutQuiz(domain.Quiz{ID: quizFour, PlayerID: bob, Title: "Capitals", Reward: "Globe"})
	store.PutQuiz(domain.Quiz{ID: quizTwo, PlayerID: bob, Title: "Rivers", Reward: "Paddle"})
	store.PutQuiz(domain.Quiz{ID: quizEmpty, PlayerID: bob, Title: "Draft", Reward: "Nothing"})
	for i := 0; i < 4; i++ {
		store.AddQuestion(quizFour, "capital?")
	}
	for i := 0; i < 2; i++ {
		store.AddQuestion(quizTwo, "river?")
	}

	quizzes := memory.NewQuizRepository(store, time.Minute)
	metrics := &recordingMetrics{}
	clock := func() time.Time { return fixedNow }
	return &testEnv{
		store:     store,
		metrics:   metrics,
		histories: app.NewHistoryServiceWithClock(store, quizzes, metrics, clock),
		rewards:   app.NewRewardService(store, quizzes, metrics),
		exchange:  app.NewExchangeServiceWithClock(store, app.NewShopFeed(), metrics, clock),
		alice:     alice,
		bob:       bob,
	}
}
