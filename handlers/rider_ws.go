package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt"

	"food-marketplace/api/models"
)

func (s *Server) validateRiderToken(c *fiber.Ctx) error {
	token := c.Query("token")
	riderID := c.Query("rider_id")

	if token == "" || riderID == "" {
		return fiber.ErrUnauthorized
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWT.SecretKey), nil
	})
	if err != nil || claims["rider_id"] != riderID {
		return fiber.ErrUnauthorized
	}
	return c.Next()
}

// handleRiderWebSocket ingests a rider's GPS fix stream. The rider is
// active while the socket lives; each message merge-upserts the fix.
func (s *Server) handleRiderWebSocket(c *websocket.Conn) {
	riderID := c.Query("rider_id")
	ctx := context.Background()

	if err := s.store.Locations.MarkActive(ctx, riderID, true); err != nil {
		log.Printf("Error setting rider %s active: %v", riderID, err)
		return
	}
	activeRiders.Inc()

	defer func() {
		if err := s.store.Locations.MarkActive(ctx, riderID, false); err != nil {
			log.Printf("Error setting rider %s inactive: %v", riderID, err)
		}
		activeRiders.Dec()
		c.Close()
	}()

	for {
		var fix models.DeliveryLocation
		if err := c.ReadJSON(&fix); err != nil {
			break
		}
		if fix.RiderID != riderID {
			continue
		}
		if _, err := s.store.Locations.SetLocation(ctx, fix); err != nil {
			log.Printf("Error updating rider %s location: %v", riderID, err)
		}
	}
}
