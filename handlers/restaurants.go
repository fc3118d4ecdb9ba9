package handlers

import (
	"github.com/gofiber/fiber/v2"

	"food-marketplace/api/models"
	"food-marketplace/api/store"
)

func (s *Server) listRestaurants(c *fiber.Ctx) error {
	restaurants, err := s.store.Restaurants.FindAllActive(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"restaurants": restaurants, "count": len(restaurants)})
}

func (s *Server) createRestaurant(c *fiber.Ctx) error {
	var in store.CreateRestaurantInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	restaurant, err := s.store.Restaurants.Create(c.Context(), in)
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Restaurant created successfully",
		"restaurant": restaurant,
	})
}

func (s *Server) getRestaurant(c *fiber.Ctx) error {
	restaurant, err := s.store.Restaurants.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"restaurant": restaurant})
}

func (s *Server) updateRestaurantMenu(c *fiber.Ctx) error {
	var body struct {
		Menu []models.MenuItem `json:"menu"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	restaurant, err := s.store.Restaurants.UpdateMenu(c.Context(), c.Params("id"), body.Menu)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Menu updated", "restaurant": restaurant})
}
