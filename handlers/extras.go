package handlers

import (
	"github.com/gofiber/fiber/v2"

	"food-marketplace/api/models"
)

func (s *Server) getWishlist(c *fiber.Ctx) error {
	wishlist, err := s.store.Wishlists.FindByCustomerID(c.Context(), c.Params("customerId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"wishlist": wishlist})
}

func (s *Server) addWishlistItem(c *fiber.Ctx) error {
	var item models.WishlistItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	wishlist, err := s.store.Wishlists.AddItem(c.Context(), c.Params("customerId"), item)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item added to wishlist", "wishlist": wishlist})
}

func (s *Server) removeWishlistItem(c *fiber.Ctx) error {
	var body struct {
		Type   string `json:"type"`
		ItemID string `json:"itemId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	wishlist, err := s.store.Wishlists.RemoveItem(c.Context(), c.Params("customerId"), body.Type, body.ItemID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item removed from wishlist", "wishlist": wishlist})
}

func (s *Server) getSubscription(c *fiber.Ctx) error {
	sub, err := s.store.Subscriptions.FindByCustomerID(c.Context(), c.Params("customerId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"subscription": sub})
}

func (s *Server) createSubscription(c *fiber.Ctx) error {
	var body struct {
		CustomerID  string            `json:"customerId"`
		PlanType    string            `json:"planType"`
		Preferences map[string]string `json:"preferences"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	sub, err := s.store.Subscriptions.Create(c.Context(), body.CustomerID, body.PlanType, body.Preferences)
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Subscription created successfully",
		"subscription": sub,
	})
}

func (s *Server) cancelSubscription(c *fiber.Ctx) error {
	sub, err := s.store.Subscriptions.Cancel(c.Context(), c.Params("customerId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subscription cancelled", "subscription": sub})
}

func (s *Server) recordDonation(c *fiber.Ctx) error {
	var body struct {
		RestaurantID string `json:"restaurantId"`
		CustomerID   string `json:"customerId"`
		Meals        int    `json:"meals"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	donation, err := s.store.Donations.Add(c.Context(), body.RestaurantID, body.CustomerID, body.Meals)
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Donation recorded",
		"donation": donation,
	})
}

func (s *Server) questProgress(c *fiber.Ctx) error {
	progress, err := s.store.Quests.Progress(c.Context(), c.Params("customerId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"progress": progress})
}
