package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-economy-service/internal/app"
	"quiz-economy-service/internal/domain"
)

// Open connects bun to Postgres through pgdriver.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Store implements app.Store on Postgres. Rows touched by sell/buy/update are
// locked with SELECT ... FOR UPDATE and balance changes are single guarded
// UPDATE statements, so concurrent transactions serialize on the rows they share.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Histories() app.HistoryRepository { return historyRepo{db: s.db} }
func (s *Store) Rewards() app.RewardRepository    { return rewardRepo{db: s.db} }
func (s *Store) Listings() app.ListingRepository  { return listingRepo{db: s.db} }
func (s *Store) Players() app.PlayerRepository    { return playerRepo{db: s.db} }
func (s *Store) Questions() app.QuestionCounter   { return questionRepo{db: s.db} }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Repositories) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, txRepositories{db: tx})
	})
}

type txRepositories struct {
	db bun.IDB
}

func (r txRepositories) Histories() app.HistoryRepository { return historyRepo(r) }
func (r txRepositories) Rewards() app.RewardRepository    { return rewardRepo(r) }
func (r txRepositories) Listings() app.ListingRepository  { return listingRepo(r) }
func (r txRepositories) Players() app.PlayerRepository    { return playerRepo(r) }
func (r txRepositories) Questions() app.QuestionCounter   { return questionRepo(r) }

func notFound(err error, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}

func affected(res sql.Result, target error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return target
	}
	return nil
}

type questionRepo struct {
	db bun.IDB
}

func (r questionRepo) CountByQuiz(ctx context.Context, quizID int64) (int, error) {
	n, err := r.db.NewSelect().Model((*questionRow)(nil)).Where("quiz_id = ?", quizID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

type historyRepo struct {
	db bun.IDB
}

func (r historyRepo) Insert(ctx context.Context, h domain.PlayHistory) (domain.PlayHistory, error) {
	row := historyFromDomain(h)
	row.ID = 0
	if _, err := r.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.PlayHistory{}, fmt.Errorf("insert history: %w", err)
	}
	return row.toDomain(), nil
}

func (r historyRepo) Get(ctx context.Context, id int64) (domain.PlayHistory, error) {
	var row historyRow
	if err := r.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.PlayHistory{}, notFound(err, domain.ErrHistoryNotFound)
	}
	return row.toDomain(), nil
}

func (r historyRepo) Update(ctx context.Context, h domain.PlayHistory) (domain.PlayHistory, error) {
	row := historyFromDomain(h)
	res, err := r.db.NewUpdate().Model(&row).
		Column("player_id", "quiz_id", "total_questions", "correct_answers", "effectiveness", "timestamp").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.PlayHistory{}, fmt.Errorf("update history: %w", err)
	}
	if err := affected(res, domain.ErrHistoryNotFound); err != nil {
		return domain.PlayHistory{}, err
	}
	return row.toDomain(), nil
}

func (r historyRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*historyRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return affected(res, domain.ErrHistoryNotFound)
}

func (r historyRepo) List(ctx context.Context) ([]domain.PlayHistory, error) {
	return r.list(ctx, r.db.NewSelect())
}

func (r historyRepo) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.PlayHistory, error) {
	return r.list(ctx, r.db.NewSelect().Where("player_id = ?", playerID))
}

func (r historyRepo) ListByQuizAndPlayer(ctx context.Context, quizID int64, playerID uuid.UUID) ([]domain.PlayHistory, error) {
	return r.list(ctx, r.db.NewSelect().Where("quiz_id = ?", quizID).Where("player_id = ?", playerID))
}

func (r historyRepo) list(ctx context.Context, q *bun.SelectQuery) ([]domain.PlayHistory, error) {
	var rows []historyRow
	if err := q.Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	out := make([]domain.PlayHistory, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type rewardRepo struct {
	db bun.IDB
}

func (r rewardRepo) Insert(ctx context.Context, reward domain.Reward) (domain.Reward, error) {
	row := rewardFromDomain(reward)
	row.ID = 0
	if _, err := r.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.Reward{}, fmt.Errorf("insert reward: %w", err)
	}
	return row.toDomain(), nil
}

func (r rewardRepo) Get(ctx context.Context, id int64) (domain.Reward, error) {
	return r.get(ctx, r.db.NewSelect(), id)
}

func (r rewardRepo) GetForUpdate(ctx context.Context, id int64) (domain.Reward, error) {
	return r.get(ctx, r.db.NewSelect().For("UPDATE"), id)
}

func (r rewardRepo) get(ctx context.Context, q *bun.SelectQuery, id int64) (domain.Reward, error) {
	var row rewardRow
	if err := q.Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Reward{}, notFound(err, domain.ErrRewardNotFound)
	}
	return row.toDomain(), nil
}

func (r rewardRepo) Update(ctx context.Context, reward domain.Reward) (domain.Reward, error) {
	row := rewardFromDomain(reward)
	res, err := r.db.NewUpdate().Model(&row).Column("reward").WherePK().Returning("*").Exec(ctx)
	if err != nil {
		return domain.Reward{}, fmt.Errorf("update reward: %w", err)
	}
	if err := affected(res, domain.ErrRewardNotFound); err != nil {
		return domain.Reward{}, err
	}
	return row.toDomain(), nil
}

func (r rewardRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*rewardRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return affected(res, domain.ErrRewardNotFound)
}

func (r rewardRepo) List(ctx context.Context) ([]domain.Reward, error) {
	return r.list(ctx, r.db.NewSelect())
}

func (r rewardRepo) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Reward, error) {
	return r.list(ctx, r.db.NewSelect().Where("player_id = ?", playerID))
}

func (r rewardRepo) list(ctx context.Context, q *bun.SelectQuery) ([]domain.Reward, error) {
	var rows []rewardRow
	if err := q.Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	out := make([]domain.Reward, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type listingRepo struct {
	db bun.IDB
}

func (r listingRepo) Insert(ctx context.Context, l domain.ShopListing) (domain.ShopListing, error) {
	row := listingFromDomain(l)
	row.ID = 0
	if _, err := r.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.ShopListing{}, fmt.Errorf("insert listing: %w", err)
	}
	return row.toDomain(), nil
}

func (r listingRepo) Get(ctx context.Context, id int64) (domain.ShopListing, error) {
	return r.get(ctx, r.db.NewSelect(), id)
}

func (r listingRepo) GetForUpdate(ctx context.Context, id int64) (domain.ShopListing, error) {
	return r.get(ctx, r.db.NewSelect().For("UPDATE"), id)
}

func (r listingRepo) get(ctx context.Context, q *bun.SelectQuery, id int64) (domain.ShopListing, error) {
	var row listingRow
	if err := q.Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.ShopListing{}, notFound(err, domain.ErrListingNotFound)
	}
	return row.toDomain(), nil
}

func (r listingRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*listingRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return affected(res, domain.ErrListingNotFound)
}

func (r listingRepo) List(ctx context.Context) ([]domain.ShopListing, error) {
	var rows []listingRow
	if err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	out := make([]domain.ShopListing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type playerRepo struct {
	db bun.IDB
}

func (r playerRepo) Balance(ctx context.Context, playerID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.NewSelect().Model((*playerRow)(nil)).Column("balance").Where("id = ?", playerID).Scan(ctx, &balance)
	if err != nil {
		return 0, notFound(err, domain.ErrPlayerNotFound)
	}
	return balance, nil
}

// AdjustBalance is one conditional UPDATE: it never reads the balance into
// the application, and it matches no row when the result would be negative
// or would not fit in a bigint.
func (r playerRepo) AdjustBalance(ctx context.Context, playerID uuid.UUID, delta int64) (int64, error) {
	var balance int64
	q := r.db.NewUpdate().Model((*playerRow)(nil)).
		Set("balance = balance + ?", delta).
		Where("id = ?", playerID)
	if delta > 0 {
		q = q.Where("balance <= ?", int64(math.MaxInt64)-delta)
	} else {
		q = q.Where("balance + ? >= 0", delta)
	}
	res, err := q.Returning("balance").Exec(ctx, &balance)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("adjust balance: %w", err)
	}
	if err == nil {
		if n, _ := res.RowsAffected(); n > 0 {
			return balance, nil
		}
	}
	exists, err := r.db.NewSelect().Model((*playerRow)(nil)).Where("id = ?", playerID).Exists(ctx)
	if err != nil {
		return 0, fmt.Errorf("check player: %w", err)
	}
	if !exists {
		return 0, domain.ErrPlayerNotFound
	}
	if delta > 0 {
		return 0, fmt.Errorf("%w: balance overflow", domain.ErrInvalidInput)
	}
	return 0, domain.ErrInsufficientFunds
}
