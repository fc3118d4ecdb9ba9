package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-marketplace/api/models"
)

func TestRatingAddAndList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ratings.Add(ctx, models.RestaurantRating{
		OrderID: "o1", RestaurantID: "r1", CustomerID: "c1", Rating: 5, Review: "Great",
	}))
	require.NoError(t, s.Ratings.Add(ctx, models.RestaurantRating{
		OrderID: "o2", RestaurantID: "r1", CustomerID: "c2", Rating: 3,
	}))
	require.NoError(t, s.Ratings.Add(ctx, models.RestaurantRating{
		OrderID: "o3", RestaurantID: "r2", CustomerID: "c1", Rating: 4,
	}))

	ratings, err := s.Ratings.RestaurantRatings(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, ratings, 2)

	ratings, err = s.Ratings.RestaurantRatings(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, ratings)
}

func TestRestaurantStats(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Ratings.RestaurantStats(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRatings)
	assert.Equal(t, 0.0, stats.AverageRating)

	for i, r := range []int{5, 4, 4, 2} {
		require.NoError(t, s.Ratings.Add(ctx, models.RestaurantRating{
			OrderID: "o" + string(rune('a'+i)), RestaurantID: "r1", Rating: r,
		}))
	}

	stats, err = s.Ratings.RestaurantStats(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalRatings)
	// (5+4+4+2)/4 = 3.75, rounded to one decimal.
	assert.Equal(t, 3.8, stats.AverageRating)
	assert.Equal(t, 2, stats.Distribution[4])
	assert.Equal(t, 1, stats.Distribution[5])
	assert.Equal(t, 0, stats.Distribution[3])
}
