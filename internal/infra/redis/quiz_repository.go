package redis

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-economy-service/internal/domain"
)

// QuizLoader fetches quiz metadata from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// QuizRepository caches quiz metadata in Redis (hash per quiz) and falls back to a loader on cache miss.
// Stored as: HSET quiz:{quizID} player_id .. title .. description .. shared .. reward ..
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	key := r.key(quizID)

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		return buildQuizFromCache(quizID, fields), nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := r.client.HGetAll(ctx, key).Result()
		if err == nil && len(fields) > 0 {
			return buildQuizFromCache(quizID, fields), nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		pipe.HSet(ctx, key,
			"player_id", quiz.PlayerID.String(),
			"title", quiz.Title,
			"description", quiz.Description,
			"shared", strconv.FormatBool(quiz.Shared),
			"reward", quiz.Reward,
		)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// Cache fill is best effort; the loaded quiz is still served.
		_, _ = pipe.Exec(ctx)

		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) key(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10)
}

func buildQuizFromCache(quizID int64, fields map[string]string) domain.Quiz {
	quiz := domain.Quiz{
		ID:          quizID,
		Title:       fields["title"],
		Description: fields["description"],
		Reward:      fields["reward"],
	}
	if id, err := uuid.Parse(fields["player_id"]); err == nil {
		quiz.PlayerID = id
	}
	if shared, err := strconv.ParseBool(fields["shared"]); err == nil {
		quiz.Shared = shared
	}
	return quiz
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
