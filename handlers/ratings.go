package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) restaurantRatings(c *fiber.Ctx) error {
	ratings, err := s.store.Ratings.RestaurantRatings(c.Context(), c.Params("restaurantId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"ratings": ratings, "count": len(ratings)})
}

func (s *Server) restaurantRatingStats(c *fiber.Ctx) error {
	stats, err := s.store.Ratings.RestaurantStats(c.Context(), c.Params("restaurantId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(stats)
}

// recalculateRestaurantRating recomputes the aggregate synchronously on
// demand, unlike the best-effort recalculation piggybacked on rating
// submission.
func (s *Server) recalculateRestaurantRating(c *fiber.Ctx) error {
	restaurantID := c.Params("restaurantId")
	stats, err := s.store.Ratings.RestaurantStats(c.Context(), restaurantID)
	if err != nil {
		return storeError(c, err)
	}
	if err := s.store.Restaurants.SetRatingAggregate(c.Context(), restaurantID, stats.AverageRating, stats.TotalRatings); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":       "Restaurant rating recalculated successfully",
		"averageRating": stats.AverageRating,
		"totalRatings":  stats.TotalRatings,
	})
}
