package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"food-marketplace/api/models"
)

type OrderStore struct {
	rdb       *redis.Client
	locations *LocationStore
}

func orderKey(id string) string          { return "order:" + id }
func orderRatingsKey(id string) string   { return "order:" + id + ":ratings" }
func customerOrdersKey(id string) string { return "orders:customer:" + id }
func restOrdersKey(id string) string     { return "orders:restaurant:" + id }
func partnerOrdersKey(id string) string  { return "orders:partner:" + id }

const pendingOrdersKey = "orders:pending"

// CreateOrderInput carries the request fields for a new order. Everything
// here except DeliveryPartnerID is required.
type CreateOrderInput struct {
	CustomerID      string             `json:"customerId"`
	RestaurantID    string             `json:"restaurantId"`
	Items           []models.OrderItem `json:"items"`
	TotalAmount     float64            `json:"totalAmount"`
	DeliveryAddress *models.Address    `json:"deliveryAddress"`
}

func (in *CreateOrderInput) validate() error {
	switch {
	case in.CustomerID == "":
		return fmt.Errorf("customerId: %w", ErrValidation)
	case in.RestaurantID == "":
		return fmt.Errorf("restaurantId: %w", ErrValidation)
	case len(in.Items) == 0:
		return fmt.Errorf("items: %w", ErrValidation)
	case in.TotalAmount <= 0:
		return fmt.Errorf("totalAmount: %w", ErrValidation)
	case in.DeliveryAddress == nil:
		return fmt.Errorf("deliveryAddress: %w", ErrValidation)
	}
	sum := 0.0
	for _, item := range in.Items {
		sum += item.Price * float64(item.Quantity)
	}
	if math.Abs(sum-in.TotalAmount) > 0.01 {
		return fmt.Errorf("totalAmount does not match items: %w", ErrValidation)
	}
	return nil
}

func (s *OrderStore) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.NewString(),
		CustomerID:      in.CustomerID,
		RestaurantID:    in.RestaurantID,
		Items:           in.Items,
		TotalAmount:     in.TotalAmount,
		DeliveryAddress: *in.DeliveryAddress,
		Status:          models.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	pipe := s.rdb.Pipeline()
	pipe.SAdd(ctx, customerOrdersKey(order.CustomerID), order.ID)
	pipe.SAdd(ctx, restOrdersKey(order.RestaurantID), order.ID)
	pipe.SAdd(ctx, pendingOrdersKey, order.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("index order %s: %w", order.ID, err)
	}
	return order, nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := getJSON(ctx, s.rdb, orderKey(id), &order); err != nil {
		return nil, err
	}
	ratings, err := s.loadRatings(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Ratings = ratings
	return &order, nil
}

func (s *OrderStore) FindByCustomerID(ctx context.Context, customerID string) ([]*models.Order, error) {
	return s.findByIndex(ctx, customerOrdersKey(customerID))
}

func (s *OrderStore) FindByRestaurantID(ctx context.Context, restaurantID string) ([]*models.Order, error) {
	return s.findByIndex(ctx, restOrdersKey(restaurantID))
}

func (s *OrderStore) FindByDeliveryPartnerID(ctx context.Context, partnerID string) ([]*models.Order, error) {
	return s.findByIndex(ctx, partnerOrdersKey(partnerID))
}

// PendingOrders lists orders still awaiting a rider, for the delivery
// partner "available orders" view.
func (s *OrderStore) PendingOrders(ctx context.Context) ([]*models.Order, error) {
	return s.findByIndex(ctx, pendingOrdersKey)
}

func (s *OrderStore) findByIndex(ctx context.Context, indexKey string) ([]*models.Order, error) {
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("scan index %s: %w", indexKey, err)
	}
	orders := make([]*models.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.FindByID(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateStatus moves the order to newStatus. Unknown values fail with
// ErrInvalidStatus, disallowed moves with ErrInvalidTransition. Re-applying
// the current status is a no-op; reaching delivered sets deliveredAt once.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, newStatus models.OrderStatus) (*models.Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%q: %w", newStatus, ErrInvalidStatus)
	}

	order, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, newStatus, ErrInvalidTransition)
	}
	if order.Status == newStatus {
		return order, nil
	}

	order.Status = newStatus
	order.UpdatedAt = time.Now().UTC()
	if newStatus == models.OrderStatusDelivered && order.DeliveredAt == nil {
		t := order.UpdatedAt
		order.DeliveredAt = &t
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	if err := s.rdb.SRem(ctx, pendingOrdersKey, id).Err(); err != nil {
		return nil, fmt.Errorf("unindex pending %s: %w", id, err)
	}
	return order, nil
}

func (s *OrderStore) AssignDeliveryPartner(ctx context.Context, id, partnerID string) (*models.Order, error) {
	if partnerID == "" {
		return nil, fmt.Errorf("deliveryPartnerId: %w", ErrValidation)
	}
	order, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prev := order.DeliveryPartnerID; prev != "" && prev != partnerID {
		if err := s.rdb.SRem(ctx, partnerOrdersKey(prev), order.ID).Err(); err != nil {
			return nil, fmt.Errorf("unindex order %s from partner %s: %w", order.ID, prev, err)
		}
	}
	order.DeliveryPartnerID = partnerID
	order.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	if err := s.rdb.SAdd(ctx, partnerOrdersKey(partnerID), order.ID).Err(); err != nil {
		return nil, fmt.Errorf("index order %s by partner: %w", order.ID, err)
	}
	return order, nil
}

// AddRating attaches a rating for the given rater role. The write is a
// single conditional HSETNX, so two concurrent submissions for the same
// role cannot both land.
func (s *OrderStore) AddRating(ctx context.Context, id, role string, rating models.Rating) (*models.Order, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}

	rating.RatedAt = time.Now().UTC()
	data, err := json.Marshal(rating)
	if err != nil {
		return nil, fmt.Errorf("marshal rating: %w", err)
	}

	set, err := s.rdb.HSetNX(ctx, orderRatingsKey(id), role, data).Result()
	if err != nil {
		return nil, fmt.Errorf("write rating for %s: %w", id, err)
	}
	if !set {
		return nil, ErrAlreadyRated
	}
	return s.FindByID(ctx, id)
}

// DeliveryPartnerLocation returns the assigned rider's latest fix, or nil
// when no partner is assigned or the rider has not reported yet.
func (s *OrderStore) DeliveryPartnerLocation(ctx context.Context, order *models.Order) (*models.DeliveryLocation, error) {
	if order.DeliveryPartnerID == "" {
		return nil, nil
	}
	return s.locations.ByRiderID(ctx, order.DeliveryPartnerID)
}

func (s *OrderStore) save(ctx context.Context, order *models.Order) error {
	// Ratings live in their own hash so attachment can be conditional;
	// strip them before persisting the document body.
	copy := *order
	copy.Ratings = nil
	return setJSON(ctx, s.rdb, orderKey(order.ID), &copy)
}

func (s *OrderStore) loadRatings(ctx context.Context, id string) (map[string]models.Rating, error) {
	fields, err := s.rdb.HGetAll(ctx, orderRatingsKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("read ratings for %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	ratings := make(map[string]models.Rating, len(fields))
	for role, raw := range fields {
		var r models.Rating
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode rating %s/%s: %w", id, role, err)
		}
		ratings[role] = r
	}
	return ratings, nil
}
