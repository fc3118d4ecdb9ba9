package handlers

import (
	"github.com/gofiber/fiber/v2"

	"food-marketplace/api/models"
)

// trackOrder serves the polling tracking client: the order's rider fix, or
// 400 while no rider is assigned yet. Before the formal assignment lands, a
// rider already reporting against the order answers via the order-keyed
// lookup.
func (s *Server) trackOrder(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	order, err := s.store.Orders.FindByID(c.Context(), orderID)
	if err != nil {
		return storeError(c, err)
	}
	if order.DeliveryPartnerID == "" {
		loc, err := s.store.Locations.ByOrderID(c.Context(), orderID)
		if err != nil {
			return storeError(c, err)
		}
		if loc == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No rider assigned"})
		}
		return c.JSON(fiber.Map{"location": loc})
	}
	loc, err := s.store.Locations.ByRiderID(c.Context(), order.DeliveryPartnerID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"location": loc})
}

// setRiderLocation is the REST ingest used by riders not holding a
// websocket open.
func (s *Server) setRiderLocation(c *fiber.Ctx) error {
	var loc models.DeliveryLocation
	if err := c.BodyParser(&loc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	saved, err := s.store.Locations.SetLocation(c.Context(), loc)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"location": saved})
}

func (s *Server) listRiders(c *fiber.Ctx) error {
	riders, err := s.store.Locations.ListRiders(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"riders": riders})
}
