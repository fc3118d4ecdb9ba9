package dispatch

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/streadway/amqp"

	"food-marketplace/api/config"
	"food-marketplace/api/models"
	"food-marketplace/api/store"
)

// Dispatcher consumes freshly created order ids from RabbitMQ and assigns
// the nearest free active rider. Orders with no candidate rider stay
// pending; a later retry or a manual assignment picks them up.
type Dispatcher struct {
	config   *config.Config
	store    *store.Store
	rabbitmq *amqp.Connection
}

func New(cfg *config.Config, st *store.Store, rabbit *amqp.Connection) *Dispatcher {
	return &Dispatcher{config: cfg, store: st, rabbitmq: rabbit}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	ch, err := d.rabbitmq.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(d.config.RabbitMQ.OrderQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			orderID := string(msg.Body)
			if err := d.AssignNearestRider(ctx, orderID); err != nil {
				log.Printf("Dispatch failed for order %s: %v", orderID, err)
			}
		}
	}
}

// AssignNearestRider picks the closest free active rider to the order's
// delivery address and assigns it, marking the rider busy.
func (d *Dispatcher) AssignNearestRider(ctx context.Context, orderID string) error {
	order, err := d.store.Orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.DeliveryPartnerID != "" || order.Status != models.OrderStatusPending {
		return nil
	}

	target := d.orderTarget(ctx, order)
	riderID := d.nearestFreeRider(ctx, target.Latitude, target.Longitude)
	if riderID == "" {
		log.Printf("No available riders for order %s", orderID)
		return nil
	}

	if _, err := d.store.Orders.AssignDeliveryPartner(ctx, orderID, riderID); err != nil {
		return err
	}
	if err := d.store.Locations.MarkBusy(ctx, riderID, true); err != nil {
		return err
	}
	log.Printf("Order %s assigned to rider %s", orderID, riderID)
	return nil
}

// orderTarget is where the rider has to go first: the restaurant when its
// coordinates are known, the delivery address otherwise.
func (d *Dispatcher) orderTarget(ctx context.Context, order *models.Order) models.GeoPoint {
	if restaurant, err := d.store.Restaurants.FindByID(ctx, order.RestaurantID); err == nil && restaurant.Location != nil {
		return *restaurant.Location
	}
	return models.GeoPoint{
		Latitude:  order.DeliveryAddress.Latitude,
		Longitude: order.DeliveryAddress.Longitude,
	}
}

func (d *Dispatcher) nearestFreeRider(ctx context.Context, lat, lng float64) string {
	riders, err := d.store.Locations.FreeActiveRiders(ctx)
	if err != nil {
		log.Printf("Failed to scan free riders: %v", err)
		return ""
	}

	var nearestID string
	minDistance := math.MaxFloat64
	for _, r := range riders {
		dist := haversine(lat, lng, r.Fix.Latitude, r.Fix.Longitude)
		if dist < minDistance {
			minDistance = dist
			nearestID = r.RiderID
		}
	}
	return nearestID
}

// CheckRiderStatus periodically frees busy riders that stopped reporting,
// so a dead connection does not strand them.
func (d *Dispatcher) CheckRiderStatus(ctx context.Context) {
	ticker := time.NewTicker(d.config.Dispatch.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reset, err := d.store.Locations.ResetStaleBusyRiders(ctx, d.config.Dispatch.RiderTimeout)
			if err != nil {
				log.Printf("Failed to reset stale riders: %v", err)
				continue
			}
			for _, riderID := range reset {
				log.Printf("Rider %s timed out, reset to free", riderID)
			}
		}
	}
}

// haversine returns the great-circle distance in kilometers.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}
