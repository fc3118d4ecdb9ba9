package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Shopify/sarama"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
	"github.com/streadway/amqp"

	"food-marketplace/api/config"
	"food-marketplace/api/store"

	_ "food-marketplace/api/docs"
)

type Server struct {
	config *config.Config
	store  *store.Store

	// rabbitmq and kafka are optional: a nil connection disables dispatch
	// publishing / event logging (used by tests).
	rabbitmq *amqp.Connection
	kafka    sarama.SyncProducer
}

func NewServer(cfg *config.Config, st *store.Store, rabbit *amqp.Connection, kafka sarama.SyncProducer) *Server {
	return &Server{
		config:   cfg,
		store:    st,
		rabbitmq: rabbit,
		kafka:    kafka,
	}
}

func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(s.metricsMiddleware())

	app.Get("/health", s.healthCheck)
	app.Get("/swagger/*", swagger.HandlerDefault)

	s.setupRoutes(app)

	app.Use("/ws/rider", s.validateRiderToken)
	app.Get("/ws/rider", websocket.New(s.handleRiderWebSocket))

	return app
}

func (s *Server) setupRoutes(app *fiber.App) {
	v1 := app.Group("/api/v1")

	orders := v1.Group("/orders")
	orders.Post("/", s.createOrder)
	orders.Get("/customer", s.customerOrders)
	orders.Get("/restaurant", s.restaurantOrders)
	orders.Get("/pending", s.pendingOrders)
	orders.Get("/:id", s.getOrder)
	orders.Put("/:id/status", s.updateOrderStatus)
	orders.Put("/:id/assign-delivery", s.assignDeliveryPartner)
	orders.Post("/:id/rate", s.rateOrder)

	delivery := v1.Group("/delivery")
	delivery.Get("/track/:orderId", s.trackOrder)
	delivery.Put("/location", s.setRiderLocation)
	delivery.Get("/riders", s.listRiders)

	restaurants := v1.Group("/restaurants")
	restaurants.Get("/", s.listRestaurants)
	restaurants.Post("/", s.createRestaurant)
	restaurants.Get("/:id", s.getRestaurant)
	restaurants.Put("/:id/menu", s.updateRestaurantMenu)

	ratings := v1.Group("/ratings")
	ratings.Get("/restaurant/:restaurantId", s.restaurantRatings)
	ratings.Get("/restaurant/:restaurantId/stats", s.restaurantRatingStats)
	ratings.Post("/restaurant/:restaurantId/recalculate", s.recalculateRestaurantRating)

	promos := v1.Group("/promos")
	promos.Get("/active", s.activePromos)
	promos.Get("/restaurant/:restaurantId", s.restaurantPromos)
	promos.Post("/", s.createPromo)
	promos.Put("/:promoId", s.updatePromo)

	wishlist := v1.Group("/wishlist")
	wishlist.Get("/:customerId", s.getWishlist)
	wishlist.Post("/:customerId/add", s.addWishlistItem)
	wishlist.Post("/:customerId/remove", s.removeWishlistItem)

	subscriptions := v1.Group("/subscriptions")
	subscriptions.Get("/:customerId", s.getSubscription)
	subscriptions.Post("/", s.createSubscription)
	subscriptions.Put("/:customerId/cancel", s.cancelSubscription)

	analytics := v1.Group("/analytics")
	analytics.Get("/restaurant/:restaurantId", s.restaurantAnalytics)
	analytics.Get("/orders/restaurant/:restaurantId", s.restaurantOrderAnalytics)
	analytics.Get("/customer/:customerId", s.customerAnalytics)
	analytics.Get("/delivery/:deliveryId", s.deliveryPartnerAnalytics)
	analytics.Get("/donations/restaurant/:restaurantId", s.donationAnalytics)

	v1.Post("/donations", s.recordDonation)
	v1.Get("/quests/:customerId", s.questProgress)
}

// logEvent ships an event to Kafka fire-and-forget. Analytics consumers
// read these; a broker failure never affects the request that emitted it.
func (s *Server) logEvent(event string, fields map[string]interface{}) {
	if s.kafka == nil {
		return
	}
	payload := map[string]interface{}{"event": event, "timestamp": time.Now().Unix()}
	for k, v := range fields {
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", event, err)
		return
	}
	_, _, err = s.kafka.SendMessage(&sarama.ProducerMessage{
		Topic: s.config.Kafka.Topic,
		Value: sarama.StringEncoder(data),
	})
	if err != nil {
		log.Printf("Failed to log event %s: %v", event, err)
	}
}

// publishDispatch hands a freshly created order to the dispatch queue.
func (s *Server) publishDispatch(orderID string) error {
	if s.rabbitmq == nil {
		return nil
	}
	ch, err := s.rabbitmq.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(s.config.RabbitMQ.OrderQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	err = ch.Publish("", s.config.RabbitMQ.OrderQueue, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        []byte(orderID),
	})
	if err != nil {
		return fmt.Errorf("publish order %s: %w", orderID, err)
	}
	return nil
}

// storeError maps store sentinel errors onto the HTTP taxonomy. Anything
// unrecognized is an infrastructure failure: logged, generic 500 to the
// client.
func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrAlreadyRated),
		errors.Is(err, store.ErrMissingRiderID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("Storage error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now(),
	})
}
