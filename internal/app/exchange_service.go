package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quiz-economy-service/internal/domain"
)

// ExchangeService converts rewards into shop listings and back, moving the
// value through player balances. Each operation is a single transaction.
type ExchangeService struct {
	store   Store
	feed    *ShopFeed
	metrics Metrics
	now     func() time.Time
}

func NewExchangeService(store Store, feed *ShopFeed, metrics Metrics) *ExchangeService {
	return newExchangeService(store, feed, metrics, time.Now)
}

func newExchangeService(store Store, feed *ShopFeed, metrics Metrics, now func() time.Time) *ExchangeService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if feed == nil {
		feed = NewShopFeed()
	}
	return &ExchangeService{store: store, feed: feed, metrics: metrics, now: now}
}

// Feed exposes the stream of committed shop changes.
func (s *ExchangeService) Feed() *ShopFeed {
	return s.feed
}

// Sell credits the owner with the reward's value and lists it in the shop.
func (s *ExchangeService) Sell(ctx context.Context, rewardID int64, playerID uuid.UUID) (domain.ShopListing, error) {
	var listing domain.ShopListing
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Repositories) error {
		reward, err := tx.Rewards().GetForUpdate(ctx, rewardID)
		if err != nil {
			return err
		}
		if reward.PlayerID != playerID {
			return domain.ErrNotOwned
		}
		if _, err := tx.Players().AdjustBalance(ctx, playerID, reward.Value); err != nil {
			return err
		}
		if err := tx.Rewards().Delete(ctx, reward.ID); err != nil {
			return err
		}
		listing, err = tx.Listings().Insert(ctx, domain.ShopListing{
			Name:   reward.Reward,
			Value:  reward.Value,
			QuizID: reward.QuizID,
		})
		return err
	})
	s.metrics.Exchanged("sell", Outcome(err))
	if err != nil {
		return domain.ShopListing{}, err
	}
	s.feed.Publish(domain.ShopEvent{Type: domain.ShopEventListed, Listing: listing, PlayerID: playerID, At: s.now()})
	return listing, nil
}

// Buy debits the buyer and turns the listing into a reward they own.
func (s *ExchangeService) Buy(ctx context.Context, listingID int64, playerID uuid.UUID) (domain.Reward, error) {
	var (
		listing domain.ShopListing
		reward  domain.Reward
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Repositories) error {
		var err error
		listing, err = tx.Listings().GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		// The debit is conditional on balance >= value, so a failed check leaves nothing to undo.
		if _, err := tx.Players().AdjustBalance(ctx, playerID, -listing.Value); err != nil {
			return err
		}
		if err := tx.Listings().Delete(ctx, listing.ID); err != nil {
			return err
		}
		reward, err = tx.Rewards().Insert(ctx, domain.Reward{
			PlayerID: playerID,
			QuizID:   listing.QuizID,
			Reward:   listing.Name,
			Value:    listing.Value,
		})
		return err
	})
	s.metrics.Exchanged("buy", Outcome(err))
	if err != nil {
		return domain.Reward{}, err
	}
	s.feed.Publish(domain.ShopEvent{Type: domain.ShopEventBought, Listing: listing, PlayerID: playerID, At: s.now()})
	return reward, nil
}

func (s *ExchangeService) Listings(ctx context.Context) ([]domain.ShopListing, error) {
	return s.store.Listings().List(ctx)
}

func (s *ExchangeService) Listing(ctx context.Context, listingID int64) (domain.ShopListing, error) {
	return s.store.Listings().Get(ctx, listingID)
}

// Balance reports a player's current balance.
func (s *ExchangeService) Balance(ctx context.Context, playerID uuid.UUID) (int64, error) {
	return s.store.Players().Balance(ctx, playerID)
}
