package handlers

import (
	"github.com/gofiber/fiber/v2"

	"food-marketplace/api/store"
)

func (s *Server) activePromos(c *fiber.Ctx) error {
	promos, err := s.store.Promos.FindAllActive(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"promos": promos, "count": len(promos)})
}

func (s *Server) restaurantPromos(c *fiber.Ctx) error {
	promos, err := s.store.Promos.FindByRestaurantID(c.Context(), c.Params("restaurantId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"promos": promos, "count": len(promos)})
}

func (s *Server) createPromo(c *fiber.Ctx) error {
	var in store.CreatePromoInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	promo, err := s.store.Promos.Create(c.Context(), in)
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Promo created successfully",
		"promo":   promo,
	})
}

func (s *Server) updatePromo(c *fiber.Ctx) error {
	var in store.UpdatePromoInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	promo, err := s.store.Promos.Update(c.Context(), c.Params("promoId"), in)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Promo updated successfully", "promo": promo})
}
