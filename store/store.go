package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"food-marketplace/api/config"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrValidation        = errors.New("missing required field")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrAlreadyRated      = errors.New("order already rated by this role")
	ErrMissingRiderID    = errors.New("riderId required")
)

// Store bundles the collection stores sharing one Redis client.
type Store struct {
	rdb *redis.Client

	Orders        *OrderStore
	Locations     *LocationStore
	Restaurants   *RestaurantStore
	Ratings       *RatingStore
	Promos        *PromoStore
	Wishlists     *WishlistStore
	Subscriptions *SubscriptionStore
	Quests        *QuestStore
	Donations     *DonationStore
}

func New(cfg config.RedisConfig) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(rdb)
}

func NewWithClient(rdb *redis.Client) *Store {
	s := &Store{rdb: rdb}
	s.Orders = &OrderStore{rdb: rdb, locations: &LocationStore{rdb: rdb}}
	s.Locations = s.Orders.locations
	s.Restaurants = &RestaurantStore{rdb: rdb}
	s.Ratings = &RatingStore{rdb: rdb}
	s.Promos = &PromoStore{rdb: rdb}
	s.Wishlists = &WishlistStore{rdb: rdb}
	s.Subscriptions = &SubscriptionStore{rdb: rdb}
	s.Quests = &QuestStore{rdb: rdb}
	s.Donations = &DonationStore{rdb: rdb}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func setJSON(ctx context.Context, rdb *redis.Client, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func getJSON(ctx context.Context, rdb *redis.Client, key string, v interface{}) error {
	data, err := rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
