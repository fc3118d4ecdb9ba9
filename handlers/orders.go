package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"food-marketplace/api/models"
	"food-marketplace/api/store"
)

func (s *Server) createOrder(c *fiber.Ctx) error {
	var in store.CreateOrderInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	order, err := s.store.Orders.Create(c.Context(), in)
	if err != nil {
		return storeError(c, err)
	}

	// Quest progress is a non-critical collaborator: its failure must not
	// fail the order that was already written.
	if err := s.store.Quests.IncrOrdersPlaced(c.Context(), order.CustomerID); err != nil {
		log.Printf("Failed to update quest progress for %s: %v", order.CustomerID, err)
	}

	if err := s.publishDispatch(order.ID); err != nil {
		log.Printf("Failed to publish order %s for dispatch: %v", order.ID, err)
	}
	s.logEvent("order_created", map[string]interface{}{
		"order_id":      order.ID,
		"customer_id":   order.CustomerID,
		"restaurant_id": order.RestaurantID,
		"total_amount":  order.TotalAmount,
	})
	ordersCreated.Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

func (s *Server) customerOrders(c *fiber.Ctx) error {
	customerID := c.Query("customerId")
	if customerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Customer ID required"})
	}
	orders, err := s.store.Orders.FindByCustomerID(c.Context(), customerID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func (s *Server) restaurantOrders(c *fiber.Ctx) error {
	restaurantID := c.Query("restaurantId")
	if restaurantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Restaurant ID required"})
	}
	orders, err := s.store.Orders.FindByRestaurantID(c.Context(), restaurantID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func (s *Server) pendingOrders(c *fiber.Ctx) error {
	orders, err := s.store.Orders.PendingOrders(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func (s *Server) getOrder(c *fiber.Ctx) error {
	order, err := s.store.Orders.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}

	resp := fiber.Map{"order": order}
	if order.ActiveDelivery() {
		// A rider that has not reported yet yields null, not an error.
		loc, err := s.store.Orders.DeliveryPartnerLocation(c.Context(), order)
		if err != nil {
			log.Printf("Failed to join live location for order %s: %v", order.ID, err)
			loc = nil
		}
		resp["liveLocation"] = loc
	}
	return c.JSON(resp)
}

func (s *Server) updateOrderStatus(c *fiber.Ctx) error {
	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !body.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	order, err := s.store.Orders.UpdateStatus(c.Context(), c.Params("id"), body.Status)
	if err != nil {
		return storeError(c, err)
	}

	s.logEvent("order_status_changed", map[string]interface{}{
		"order_id": order.ID,
		"status":   string(order.Status),
	})
	if order.Status == models.OrderStatusDelivered {
		ordersDelivered.Inc()
		if order.DeliveryPartnerID != "" {
			if err := s.store.Locations.MarkBusy(c.Context(), order.DeliveryPartnerID, false); err != nil {
				log.Printf("Failed to free rider %s: %v", order.DeliveryPartnerID, err)
			}
		}
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "order": order})
}

func (s *Server) assignDeliveryPartner(c *fiber.Ctx) error {
	var body struct {
		DeliveryPartnerID string `json:"deliveryPartnerId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if body.DeliveryPartnerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Delivery partner ID required"})
	}

	order, err := s.store.Orders.AssignDeliveryPartner(c.Context(), c.Params("id"), body.DeliveryPartnerID)
	if err != nil {
		return storeError(c, err)
	}

	s.logEvent("order_assigned", map[string]interface{}{
		"order_id": order.ID,
		"rider_id": order.DeliveryPartnerID,
	})
	return c.JSON(fiber.Map{"message": "Delivery partner assigned", "order": order})
}

func (s *Server) rateOrder(c *fiber.Ctx) error {
	var body struct {
		Rating     int    `json:"rating"`
		Review     string `json:"review"`
		CustomerID string `json:"customerId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	order, err := s.store.Orders.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if order.CustomerID != body.CustomerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to rate this order"})
	}
	if order.Status != models.OrderStatusDelivered {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order must be delivered before rating"})
	}
	if body.Rating < 1 || body.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rating must be between 1 and 5"})
	}

	rated, err := s.store.Orders.AddRating(c.Context(), order.ID, models.RaterRoleCustomer, models.Rating{
		Rating: body.Rating,
		Review: body.Review,
	})
	if err != nil {
		return storeError(c, err)
	}

	// The aggregate recalculation is best-effort like quest progress: a
	// failure here is logged, the rating itself already landed.
	if err := s.recordRestaurantRating(c, rated, body.Rating, body.Review); err != nil {
		log.Printf("Failed to recalculate rating for restaurant %s: %v", order.RestaurantID, err)
	}

	s.logEvent("order_rated", map[string]interface{}{
		"order_id":      order.ID,
		"restaurant_id": order.RestaurantID,
		"rating":        body.Rating,
	})
	return c.JSON(fiber.Map{"message": "Rating submitted", "order": rated})
}

func (s *Server) recordRestaurantRating(c *fiber.Ctx, order *models.Order, rating int, review string) error {
	err := s.store.Ratings.Add(c.Context(), models.RestaurantRating{
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		CustomerID:   order.CustomerID,
		Rating:       rating,
		Review:       review,
		CreatedAt:    order.Ratings[models.RaterRoleCustomer].RatedAt,
	})
	if err != nil {
		return err
	}
	return s.updateRestaurantAggregate(c, order.RestaurantID)
}

func (s *Server) updateRestaurantAggregate(c *fiber.Ctx, restaurantID string) error {
	stats, err := s.store.Ratings.RestaurantStats(c.Context(), restaurantID)
	if err != nil {
		return err
	}
	err = s.store.Restaurants.SetRatingAggregate(c.Context(), restaurantID, stats.AverageRating, stats.TotalRatings)
	if err == store.ErrNotFound {
		// Ratings can reference restaurants not onboarded in this store.
		return nil
	}
	return err
}
