package store

import (
	"context"
	"fmt"
	"math"

	"github.com/go-redis/redis/v8"

	"food-marketplace/api/models"
)

// RatingStore is the flat ratings collection behind the per-restaurant
// rating list, stats and aggregate recalculation.
type RatingStore struct {
	rdb *redis.Client
}

func ratingKey(orderID string) string     { return "rating:" + orderID }
func restRatingsKey(restID string) string { return "ratings:restaurant:" + restID }

func (s *RatingStore) Add(ctx context.Context, r models.RestaurantRating) error {
	if err := setJSON(ctx, s.rdb, ratingKey(r.OrderID), &r); err != nil {
		return err
	}
	if err := s.rdb.SAdd(ctx, restRatingsKey(r.RestaurantID), r.OrderID).Err(); err != nil {
		return fmt.Errorf("index rating %s: %w", r.OrderID, err)
	}
	return nil
}

func (s *RatingStore) RestaurantRatings(ctx context.Context, restaurantID string) ([]models.RestaurantRating, error) {
	ids, err := s.rdb.SMembers(ctx, restRatingsKey(restaurantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("scan ratings for %s: %w", restaurantID, err)
	}
	out := make([]models.RestaurantRating, 0, len(ids))
	for _, id := range ids {
		var r models.RestaurantRating
		if err := getJSON(ctx, s.rdb, ratingKey(id), &r); err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

type RatingStats struct {
	AverageRating float64     `json:"averageRating"`
	TotalRatings  int         `json:"totalRatings"`
	Distribution  map[int]int `json:"ratingDistribution"`
}

func (s *RatingStore) RestaurantStats(ctx context.Context, restaurantID string) (RatingStats, error) {
	ratings, err := s.RestaurantRatings(ctx, restaurantID)
	if err != nil {
		return RatingStats{}, err
	}
	stats := RatingStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, r := range ratings {
		stats.Distribution[r.Rating]++
		sum += r.Rating
	}
	stats.TotalRatings = len(ratings)
	if stats.TotalRatings > 0 {
		avg := float64(sum) / float64(stats.TotalRatings)
		stats.AverageRating = math.Round(avg*10) / 10
	}
	return stats, nil
}
