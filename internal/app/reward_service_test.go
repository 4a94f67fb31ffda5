package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"quiz-economy-service/internal/app"
	"quiz-economy-service/internal/domain"
)

func TestEvaluatePicksEarliestQualifying(t *testing.T) {
	cases := []struct {
		name      string
		histories []domain.PlayHistory
		wantID    int64
		wantErr   error
	}{
		{name: "empty", wantErr: domain.ErrIneligible},
		{
			name: "none qualify",
			histories: []domain.PlayHistory{
				{ID: 1, Effectiveness: 0.5},
				{ID: 2, Effectiveness: 0.74},
			},
			wantErr: domain.ErrIneligible,
		},
		{
			name: "threshold is inclusive",
			histories: []domain.PlayHistory{
				{ID: 1, Effectiveness: 0.5},
				{ID: 2, Effectiveness: 0.75},
			},
			wantID: 2,
		},
		{
			name: "earliest wins over better later attempt",
			histories: []domain.PlayHistory{
				{ID: 3, Effectiveness: 1.0, TotalQuestions: 20},
				{ID: 1, Effectiveness: 0.8, TotalQuestions: 5},
				{ID: 2, Effectiveness: 0.2},
			},
			wantID: 1,
		},
	}
	for _, c := range cases {
		got, err := app.Evaluate(c.histories)
		if !errors.Is(err, c.wantErr) {
			t.Fatalf("%s: err=%v, want %v", c.name, err, c.wantErr)
		}
		if err == nil && got.ID != c.wantID {
			t.Fatalf("%s: picked %d, want %d", c.name, got.ID, c.wantID)
		}
	}
}

func TestCollectPaysQualifyingAttempt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// 0.5 then 0.75 on a four question quiz.
	mustRecord(t, env, quizFour, 2)
	mustRecord(t, env, quizFour, 3)

	reward, err := env.rewards.Collect(ctx, quizFour, env.alice)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if reward.Value != 40 || reward.Reward != "Globe" || reward.PlayerID != env.alice || reward.QuizID != quizFour {
		t.Fatalf("unexpected reward %+v", reward)
	}
	owned, _ := env.rewards.ListByPlayer(ctx, env.alice)
	if len(owned) != 1 || owned[0] != reward {
		t.Fatalf("expected reward persisted, got %+v", owned)
	}
	if env.metrics.count("collect:ok") != 1 {
		t.Fatalf("expected collect metric, got %+v", env.metrics.snapshot())
	}
}

func TestCollectPayoutFollowsSelectedEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	mustRecord(t, env, quizFour, 4) // qualifies with 4 questions
	env.store.AddQuestion(quizFour, "fifth")
	env.store.AddQuestion(quizFour, "sixth")
	mustRecord(t, env, quizFour, 6) // also qualifies, with 6 questions

	reward, err := env.rewards.Collect(ctx, quizFour, env.alice)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if reward.Value != 40 {
		t.Fatalf("expected payout from the earliest qualifying attempt (40), got %d", reward.Value)
	}
}

func TestCollectIneligibleCreatesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	if _, err := env.rewards.Collect(ctx, quizFour, env.alice); !errors.Is(err, domain.ErrIneligible) {
		t.Fatalf("expected ineligible without histories, got %v", err)
	}

	mustRecord(t, env, quizFour, 1)
	mustRecord(t, env, quizFour, 2)
	if _, err := env.rewards.Collect(ctx, quizFour, env.alice); !errors.Is(err, domain.ErrIneligible) {
		t.Fatalf("expected ineligible below threshold, got %v", err)
	}

	// Bob never played; another player's history does not count.
	mustRecord(t, env, quizFour, 4)
	if _, err := env.rewards.Collect(ctx, quizFour, env.bob); !errors.Is(err, domain.ErrIneligible) {
		t.Fatalf("expected ineligible for bob, got %v", err)
	}

	all, _ := env.rewards.List(ctx)
	if len(all) != 0 {
		t.Fatalf("expected no rewards, got %+v", all)
	}
}

func TestCollectTwiceMintsTwice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mustRecord(t, env, quizTwo, 2)

	first, err := env.rewards.Collect(ctx, quizTwo, env.alice)
	if err != nil {
		t.Fatalf("collect 1: %v", err)
	}
	second, err := env.rewards.Collect(ctx, quizTwo, env.alice)
	if err != nil {
		t.Fatalf("collect 2: %v", err)
	}
	if first.ID == second.ID || first.Value != 20 || second.Value != 20 {
		t.Fatalf("expected two distinct rewards worth 20, got %+v and %+v", first, second)
	}
}

func TestRewardNameForQuiz(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	name, err := env.rewards.RewardNameForQuiz(ctx, quizTwo)
	if err != nil || name != "Paddle" {
		t.Fatalf("expected Paddle, got %q err=%v", name, err)
	}
	if _, err := env.rewards.RewardNameForQuiz(ctx, 404); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestRewardUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mustRecord(t, env, quizTwo, 2)
	reward, _ := env.rewards.Collect(ctx, quizTwo, env.alice)

	name := "Silver Paddle"
	if _, err := env.rewards.Update(ctx, reward.ID, env.bob, domain.RewardUpdate{Reward: &name}); !errors.Is(err, domain.ErrNotOwned) {
		t.Fatalf("expected not owned, got %v", err)
	}
	updated, err := env.rewards.Update(ctx, reward.ID, env.alice, domain.RewardUpdate{Reward: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Reward != name || updated.Value != reward.Value || updated.QuizID != quizTwo || updated.PlayerID != env.alice {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if _, err := env.rewards.Update(ctx, 999, env.alice, domain.RewardUpdate{}); !errors.Is(err, domain.ErrRewardNotFound) {
		t.Fatalf("expected reward not found, got %v", err)
	}

	if err := env.rewards.Delete(ctx, reward.ID, env.bob); !errors.Is(err, domain.ErrNotOwned) {
		t.Fatalf("expected not owned on delete, got %v", err)
	}
	if err := env.rewards.Delete(ctx, reward.ID, env.alice); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.rewards.Get(ctx, reward.ID); !errors.Is(err, domain.ErrRewardNotFound) {
		t.Fatalf("expected reward gone, got %v", err)
	}
}

func TestRenamedRewardSellsAtCollectedValue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mustRecord(t, env, quizFour, 4)
	reward, err := env.rewards.Collect(ctx, quizFour, env.alice)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	// A value sent alongside the name is not part of the update and is dropped.
	var upd domain.RewardUpdate
	if err := json.Unmarshal([]byte(`{"reward":"Shiny Globe","value":1000000}`), &upd); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	renamed, err := env.rewards.Update(ctx, reward.ID, env.alice, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if renamed.Value != 40 {
		t.Fatalf("expected value to stay 40, got %d", renamed.Value)
	}

	listing, err := env.exchange.Sell(ctx, reward.ID, env.alice)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if listing.Value != 40 || listing.Name != "Shiny Globe" {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if balance := mustBalance(t, env, env.alice); balance != 40 {
		t.Fatalf("expected balance 40 after sell, got %d", balance)
	}
}

func mustRecord(t *testing.T, env *testEnv, quizID int64, correct int) domain.PlayHistory {
	t.Helper()
	h, err := env.histories.Record(context.Background(), env.alice, domain.HistoryInput{QuizID: quizID, CorrectAnswers: correct})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return h
}

type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *recordingMetrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
}

func (m *recordingMetrics) HistoryRecorded(outcome string) { m.inc("history:" + outcome) }
func (m *recordingMetrics) RewardCollected(outcome string) { m.inc("collect:" + outcome) }
func (m *recordingMetrics) Exchanged(op, outcome string)   { m.inc(op + ":" + outcome) }

func (m *recordingMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *recordingMetrics) snapshot() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}
