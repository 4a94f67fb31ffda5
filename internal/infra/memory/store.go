package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"quiz-economy-service/internal/app"
	"quiz-economy-service/internal/domain"
)

// Store is an in-memory implementation of app.Store.
// Transactions hold the write lock, work on a copy of the ledgers and swap it
// in only when the callback succeeds. Quiz metadata lives behind its own lock
// so catalog reads stay possible from inside a transaction.
type Store struct {
	mu sync.Mutex
	st *state

	catalogMu sync.RWMutex
	quizzes   map[int64]domain.Quiz
}

type state struct {
	questions map[int64]domain.Question
	players   map[uuid.UUID]domain.Player
	histories map[int64]domain.PlayHistory
	rewards   map[int64]domain.Reward
	listings  map[int64]domain.ShopListing

	nextQuestion int64
	nextHistory  int64
	nextReward   int64
	nextListing  int64
}

func newState() *state {
	return &state{
		questions: make(map[int64]domain.Question),
		players:   make(map[uuid.UUID]domain.Player),
		histories: make(map[int64]domain.PlayHistory),
		rewards:   make(map[int64]domain.Reward),
		listings:  make(map[int64]domain.ShopListing),
	}
}

func (s *state) clone() *state {
	c := &state{
		questions:    make(map[int64]domain.Question, len(s.questions)),
		players:      make(map[uuid.UUID]domain.Player, len(s.players)),
		histories:    make(map[int64]domain.PlayHistory, len(s.histories)),
		rewards:      make(map[int64]domain.Reward, len(s.rewards)),
		listings:     make(map[int64]domain.ShopListing, len(s.listings)),
		nextQuestion: s.nextQuestion,
		nextHistory:  s.nextHistory,
		nextReward:   s.nextReward,
		nextListing:  s.nextListing,
	}
	for k, v := range s.questions {
		c.questions[k] = v
	}
	for k, v := range s.players {
		c.players[k] = v
	}
	for k, v := range s.histories {
		c.histories[k] = v
	}
	for k, v := range s.rewards {
		c.rewards[k] = v
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	return c
}

func NewStore() *Store {
	return &Store{
		st:      newState(),
		quizzes: make(map[int64]domain.Quiz),
	}
}

// access runs fn against a consistent state. Callbacks must validate before
// writing so a single call never leaves a partial change behind.
type access interface {
	do(fn func(st *state) error) error
}

func (s *Store) do(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

type txAccess struct {
	st *state
}

func (t txAccess) do(fn func(st *state) error) error {
	return fn(t.st)
}

type repositories struct {
	a access
}

func (r repositories) Histories() app.HistoryRepository { return historyRepo(r) }
func (r repositories) Rewards() app.RewardRepository    { return rewardRepo(r) }
func (r repositories) Listings() app.ListingRepository  { return listingRepo(r) }
func (r repositories) Players() app.PlayerRepository    { return playerRepo(r) }
func (r repositories) Questions() app.QuestionCounter   { return questionRepo(r) }

func (s *Store) Histories() app.HistoryRepository { return repositories{a: s}.Histories() }
func (s *Store) Rewards() app.RewardRepository    { return repositories{a: s}.Rewards() }
func (s *Store) Listings() app.ListingRepository  { return repositories{a: s}.Listings() }
func (s *Store) Players() app.PlayerRepository    { return repositories{a: s}.Players() }
func (s *Store) Questions() app.QuestionCounter   { return repositories{a: s}.Questions() }

// RunInTx serializes transactions. fn must use tx, not s, or it deadlocks.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, repositories{a: txAccess{st: work}}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// PutQuiz seeds or replaces quiz metadata.
func (s *Store) PutQuiz(quiz domain.Quiz) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.quizzes[quiz.ID] = quiz
}

// AddQuestion attaches a question to a quiz and returns it with its new ID.
func (s *Store) AddQuestion(quizID int64, text string) domain.Question {
	var q domain.Question
	_ = s.do(func(st *state) error {
		st.nextQuestion++
		q = domain.Question{ID: st.nextQuestion, QuizID: quizID, Text: text}
		st.questions[q.ID] = q
		return nil
	})
	return q
}

// RemoveQuestion detaches a question; used to model quizzes changing after play.
func (s *Store) RemoveQuestion(questionID int64) {
	_ = s.do(func(st *state) error {
		delete(st.questions, questionID)
		return nil
	})
}

// PutPlayer seeds or replaces a player.
func (s *Store) PutPlayer(p domain.Player) {
	_ = s.do(func(st *state) error {
		st.players[p.ID] = p
		return nil
	})
}

// LoadQuiz makes Store usable as a QuizLoader.
func (s *Store) LoadQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	if quiz, ok := s.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

type questionRepo repositories

func (r questionRepo) CountByQuiz(_ context.Context, quizID int64) (int, error) {
	n := 0
	err := r.a.do(func(st *state) error {
		for _, q := range st.questions {
			if q.QuizID == quizID {
				n++
			}
		}
		return nil
	})
	return n, err
}

type historyRepo repositories

func (r historyRepo) Insert(_ context.Context, h domain.PlayHistory) (domain.PlayHistory, error) {
	err := r.a.do(func(st *state) error {
		st.nextHistory++
		h.ID = st.nextHistory
		st.histories[h.ID] = h
		return nil
	})
	return h, err
}

func (r historyRepo) Get(_ context.Context, id int64) (domain.PlayHistory, error) {
	var h domain.PlayHistory
	err := r.a.do(func(st *state) error {
		found, ok := st.histories[id]
		if !ok {
			return domain.ErrHistoryNotFound
		}
		h = found
		return nil
	})
	return h, err
}

func (r historyRepo) Update(_ context.Context, h domain.PlayHistory) (domain.PlayHistory, error) {
	err := r.a.do(func(st *state) error {
		if _, ok := st.histories[h.ID]; !ok {
			return domain.ErrHistoryNotFound
		}
		st.histories[h.ID] = h
		return nil
	})
	return h, err
}

func (r historyRepo) Delete(_ context.Context, id int64) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.histories[id]; !ok {
			return domain.ErrHistoryNotFound
		}
		delete(st.histories, id)
		return nil
	})
}

func (r historyRepo) List(_ context.Context) ([]domain.PlayHistory, error) {
	return r.filter(func(domain.PlayHistory) bool { return true })
}

func (r historyRepo) ListByPlayer(_ context.Context, playerID uuid.UUID) ([]domain.PlayHistory, error) {
	return r.filter(func(h domain.PlayHistory) bool { return h.PlayerID == playerID })
}

func (r historyRepo) ListByQuizAndPlayer(_ context.Context, quizID int64, playerID uuid.UUID) ([]domain.PlayHistory, error) {
	return r.filter(func(h domain.PlayHistory) bool { return h.QuizID == quizID && h.PlayerID == playerID })
}

func (r historyRepo) filter(keep func(domain.PlayHistory) bool) ([]domain.PlayHistory, error) {
	out := make([]domain.PlayHistory, 0)
	err := r.a.do(func(st *state) error {
		for _, h := range st.histories {
			if keep(h) {
				out = append(out, h)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type rewardRepo repositories

func (r rewardRepo) Insert(_ context.Context, reward domain.Reward) (domain.Reward, error) {
	err := r.a.do(func(st *state) error {
		st.nextReward++
		reward.ID = st.nextReward
		st.rewards[reward.ID] = reward
		return nil
	})
	return reward, err
}

func (r rewardRepo) Get(_ context.Context, id int64) (domain.Reward, error) {
	var reward domain.Reward
	err := r.a.do(func(st *state) error {
		found, ok := st.rewards[id]
		if !ok {
			return domain.ErrRewardNotFound
		}
		reward = found
		return nil
	})
	return reward, err
}

// GetForUpdate needs no extra locking: transactions already run one at a time.
func (r rewardRepo) GetForUpdate(ctx context.Context, id int64) (domain.Reward, error) {
	return r.Get(ctx, id)
}

// Update only renames; owner, quiz and value stay as stored.
func (r rewardRepo) Update(_ context.Context, reward domain.Reward) (domain.Reward, error) {
	var updated domain.Reward
	err := r.a.do(func(st *state) error {
		stored, ok := st.rewards[reward.ID]
		if !ok {
			return domain.ErrRewardNotFound
		}
		stored.Reward = reward.Reward
		st.rewards[reward.ID] = stored
		updated = stored
		return nil
	})
	return updated, err
}

func (r rewardRepo) Delete(_ context.Context, id int64) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.rewards[id]; !ok {
			return domain.ErrRewardNotFound
		}
		delete(st.rewards, id)
		return nil
	})
}

func (r rewardRepo) List(_ context.Context) ([]domain.Reward, error) {
	return r.filter(func(domain.Reward) bool { return true })
}

func (r rewardRepo) ListByPlayer(_ context.Context, playerID uuid.UUID) ([]domain.Reward, error) {
	return r.filter(func(reward domain.Reward) bool { return reward.PlayerID == playerID })
}

func (r rewardRepo) filter(keep func(domain.Reward) bool) ([]domain.Reward, error) {
	out := make([]domain.Reward, 0)
	err := r.a.do(func(st *state) error {
		for _, reward := range st.rewards {
			if keep(reward) {
				out = append(out, reward)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type listingRepo repositories

func (r listingRepo) Insert(_ context.Context, l domain.ShopListing) (domain.ShopListing, error) {
	err := r.a.do(func(st *state) error {
		st.nextListing++
		l.ID = st.nextListing
		st.listings[l.ID] = l
		return nil
	})
	return l, err
}

func (r listingRepo) Get(_ context.Context, id int64) (domain.ShopListing, error) {
	var l domain.ShopListing
	err := r.a.do(func(st *state) error {
		found, ok := st.listings[id]
		if !ok {
			return domain.ErrListingNotFound
		}
		l = found
		return nil
	})
	return l, err
}

func (r listingRepo) GetForUpdate(ctx context.Context, id int64) (domain.ShopListing, error) {
	return r.Get(ctx, id)
}

func (r listingRepo) Delete(_ context.Context, id int64) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.listings[id]; !ok {
			return domain.ErrListingNotFound
		}
		delete(st.listings, id)
		return nil
	})
}

func (r listingRepo) List(_ context.Context) ([]domain.ShopListing, error) {
	out := make([]domain.ShopListing, 0)
	err := r.a.do(func(st *state) error {
		for _, l := range st.listings {
			out = append(out, l)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type playerRepo repositories

func (r playerRepo) Balance(_ context.Context, playerID uuid.UUID) (int64, error) {
	var balance int64
	err := r.a.do(func(st *state) error {
		p, ok := st.players[playerID]
		if !ok {
			return domain.ErrPlayerNotFound
		}
		balance = p.Balance
		return nil
	})
	return balance, err
}

func (r playerRepo) AdjustBalance(_ context.Context, playerID uuid.UUID, delta int64) (int64, error) {
	var balance int64
	err := r.a.do(func(st *state) error {
		p, ok := st.players[playerID]
		if !ok {
			return domain.ErrPlayerNotFound
		}
		if delta > 0 && p.Balance > math.MaxInt64-delta {
			return fmt.Errorf("%w: balance overflow", domain.ErrInvalidInput)
		}
		if p.Balance+delta < 0 {
			return domain.ErrInsufficientFunds
		}
		p.Balance += delta
		st.players[playerID] = p
		balance = p.Balance
		return nil
	})
	return balance, err
}
