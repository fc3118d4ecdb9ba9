package handlers

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"food-marketplace/api/models"
)

// rangeStart maps the ?range= query onto a cutoff; zero time means no
// filtering.
func rangeStart(rangeParam string, now time.Time) time.Time {
	switch rangeParam {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	}
	return time.Time{}
}

func filterOrdersSince(orders []*models.Order, since time.Time) []*models.Order {
	if since.IsZero() {
		return orders
	}
	filtered := orders[:0]
	for _, o := range orders {
		if !o.CreatedAt.Before(since) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// deliveryFee is the flat per-delivery payout used for earnings analytics.
const deliveryFee = 5.0

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *Server) restaurantAnalytics(c *fiber.Ctx) error {
	restaurantID := c.Params("restaurantId")

	orders, err := s.store.Orders.FindByRestaurantID(c.Context(), restaurantID)
	if err != nil {
		return storeError(c, err)
	}
	orders = filterOrdersSince(orders, rangeStart(c.Query("range"), time.Now().UTC()))

	totalRevenue := 0.0
	for _, o := range orders {
		totalRevenue += o.TotalAmount
	}
	avgOrderValue := 0.0
	if len(orders) > 0 {
		avgOrderValue = totalRevenue / float64(len(orders))
	}

	stats, err := s.store.Ratings.RestaurantStats(c.Context(), restaurantID)
	if err != nil {
		return storeError(c, err)
	}

	totalMenuItems := 0
	if restaurant, err := s.store.Restaurants.FindByID(c.Context(), restaurantID); err == nil {
		totalMenuItems = len(restaurant.Menu)
	}

	return c.JSON(fiber.Map{
		"totalOrders":    len(orders),
		"totalRevenue":   totalRevenue,
		"avgOrderValue":  avgOrderValue,
		"avgRating":      stats.AverageRating,
		"totalMenuItems": totalMenuItems,
		"ordersOverTime": []fiber.Map{},
		"topItems":       []fiber.Map{},
	})
}

func (s *Server) restaurantOrderAnalytics(c *fiber.Ctx) error {
	restaurantID := c.Params("restaurantId")

	orders, err := s.store.Orders.FindByRestaurantID(c.Context(), restaurantID)
	if err != nil {
		return storeError(c, err)
	}
	orders = filterOrdersSince(orders, rangeStart(c.Query("range"), time.Now().UTC()))

	totalRevenue := 0.0
	completed := 0
	for _, o := range orders {
		totalRevenue += o.TotalAmount
		if o.Status == models.OrderStatusDelivered {
			completed++
		}
	}
	avgOrderValue := 0.0
	completionRate := 0.0
	if len(orders) > 0 {
		avgOrderValue = totalRevenue / float64(len(orders))
		completionRate = float64(completed) / float64(len(orders)) * 100
	}

	return c.JSON(fiber.Map{
		"totalOrders":         len(orders),
		"totalRevenue":        totalRevenue,
		"avgOrderValue":       avgOrderValue,
		"completionRate":      completionRate,
		"ordersOverTime":      []fiber.Map{},
		"topItems":            []fiber.Map{},
		"revenueByRestaurant": []fiber.Map{},
		"ordersByStatus":      []fiber.Map{},
	})
}

func (s *Server) customerAnalytics(c *fiber.Ctx) error {
	customerID := c.Params("customerId")

	orders, err := s.store.Orders.FindByCustomerID(c.Context(), customerID)
	if err != nil {
		return storeError(c, err)
	}
	orders = filterOrdersSince(orders, rangeStart(c.Query("range"), time.Now().UTC()))

	totalSpent := 0.0
	for _, o := range orders {
		totalSpent += o.TotalAmount
	}
	avgOrderValue := 0.0
	if len(orders) > 0 {
		avgOrderValue = totalSpent / float64(len(orders))
	}

	progress, err := s.store.Quests.Progress(c.Context(), customerID)
	if err != nil {
		return storeError(c, err)
	}

	history := make([]fiber.Map, 0, 5)
	for _, o := range orders {
		if len(history) == 5 {
			break
		}
		history = append(history, fiber.Map{
			"date":       o.CreatedAt.Format("2006-01-02"),
			"restaurant": s.restaurantName(c, o.RestaurantID),
			"items":      len(o.Items),
			"total":      o.TotalAmount,
			"status":     string(o.Status),
		})
	}

	return c.JSON(fiber.Map{
		"totalOrders":         len(orders),
		"totalSpent":          totalSpent,
		"avgOrderValue":       avgOrderValue,
		"pointsEarned":        progress.TotalPoints,
		"orderHistory":        history,
		"spendingOverTime":    []fiber.Map{},
		"favoriteRestaurants": []fiber.Map{},
	})
}

func (s *Server) deliveryPartnerAnalytics(c *fiber.Ctx) error {
	partnerID := c.Params("deliveryId")

	orders, err := s.store.Orders.FindByDeliveryPartnerID(c.Context(), partnerID)
	if err != nil {
		return storeError(c, err)
	}
	orders = filterOrdersSince(orders, rangeStart(c.Query("range"), time.Now().UTC()))

	totalDeliveries := len(orders)
	completed := 0
	for _, o := range orders {
		if o.Status == models.OrderStatusDelivered {
			completed++
		}
	}
	completionRate := 0.0
	if totalDeliveries > 0 {
		completionRate = round1(float64(completed) / float64(totalDeliveries) * 100)
	}

	history := make([]fiber.Map, 0, 5)
	for _, o := range orders {
		if len(history) == 5 {
			break
		}
		history = append(history, fiber.Map{
			"date":       o.CreatedAt.Format("2006-01-02"),
			"restaurant": s.restaurantName(c, o.RestaurantID),
			"customer":   o.CustomerID,
			"earnings":   deliveryFee,
			"status":     string(o.Status),
		})
	}

	return c.JSON(fiber.Map{
		"totalDeliveries":        totalDeliveries,
		"totalEarnings":          float64(totalDeliveries) * deliveryFee,
		"avgEarningsPerDelivery": deliveryFee,
		"completionRate":         completionRate,
		"deliveryHistory":        history,
		"earningsOverTime":       []fiber.Map{},
		"deliveriesByStatus":     []fiber.Map{},
	})
}

func (s *Server) donationAnalytics(c *fiber.Ctx) error {
	donations, err := s.store.Donations.FindByRestaurantID(c.Context(), c.Params("restaurantId"))
	if err != nil {
		return storeError(c, err)
	}

	since := rangeStart(c.Query("range"), time.Now().UTC())
	totalMeals := 0
	counted := 0
	for _, d := range donations {
		if !since.IsZero() && d.CreatedAt.Before(since) {
			continue
		}
		totalMeals += d.Meals
		counted++
	}
	avgPerDonation := 0.0
	if counted > 0 {
		avgPerDonation = float64(totalMeals) / float64(counted)
	}

	return c.JSON(fiber.Map{
		"totalMealsDonated":        totalMeals,
		"totalImpact":              totalMeals * 10,
		"avgDonationsPerOrder":     avgPerDonation,
		"participatingRestaurants": 1,
		"donationsOverTime":        []fiber.Map{},
		"topContributors":          []fiber.Map{},
		"impactByCategory":         []fiber.Map{},
		"monthlyGrowth":            []fiber.Map{},
	})
}

// restaurantName resolves a display name for history rows; restaurants not
// onboarded in this store show as Unknown.
func (s *Server) restaurantName(c *fiber.Ctx, restaurantID string) string {
	if r, err := s.store.Restaurants.FindByID(c.Context(), restaurantID); err == nil {
		return r.Name
	}
	return "Unknown"
}
