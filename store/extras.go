package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"food-marketplace/api/models"
)

type WishlistStore struct {
	rdb *redis.Client
}

func wishlistKey(customerID string) string { return "wishlist:" + customerID }

// FindByCustomerID returns the customer's wishlist, creating an empty one
// in memory if none is stored yet.
func (s *WishlistStore) FindByCustomerID(ctx context.Context, customerID string) (*models.Wishlist, error) {
	var w models.Wishlist
	err := getJSON(ctx, s.rdb, wishlistKey(customerID), &w)
	if err == ErrNotFound {
		return &models.Wishlist{CustomerID: customerID, Items: []models.WishlistItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WishlistStore) AddItem(ctx context.Context, customerID string, item models.WishlistItem) (*models.Wishlist, error) {
	if item.Type != "restaurant" && item.Type != "menuItem" {
		return nil, fmt.Errorf("item type: %w", ErrValidation)
	}
	if item.ItemID == "" {
		return nil, fmt.Errorf("itemId: %w", ErrValidation)
	}
	w, err := s.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for _, existing := range w.Items {
		if existing.Type == item.Type && existing.ItemID == item.ItemID {
			return w, nil
		}
	}
	item.AddedAt = time.Now().UTC()
	w.Items = append(w.Items, item)
	w.UpdatedAt = item.AddedAt
	if err := setJSON(ctx, s.rdb, wishlistKey(customerID), w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WishlistStore) RemoveItem(ctx context.Context, customerID, itemType, itemID string) (*models.Wishlist, error) {
	w, err := s.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	kept := w.Items[:0]
	for _, item := range w.Items {
		if item.Type == itemType && item.ItemID == itemID {
			continue
		}
		kept = append(kept, item)
	}
	w.Items = kept
	w.UpdatedAt = time.Now().UTC()
	if err := setJSON(ctx, s.rdb, wishlistKey(customerID), w); err != nil {
		return nil, err
	}
	return w, nil
}

type SubscriptionStore struct {
	rdb *redis.Client
}

func subscriptionKey(customerID string) string { return "subscription:" + customerID }

var validPlanTypes = map[string]bool{"weekly": true, "biweekly": true, "monthly": true}

func (s *SubscriptionStore) Create(ctx context.Context, customerID, planType string, preferences map[string]string) (*models.Subscription, error) {
	if customerID == "" {
		return nil, fmt.Errorf("customerId: %w", ErrValidation)
	}
	if !validPlanTypes[planType] {
		return nil, fmt.Errorf("planType: %w", ErrValidation)
	}
	now := time.Now().UTC()
	sub := &models.Subscription{
		CustomerID:  customerID,
		PlanType:    planType,
		Preferences: preferences,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := setJSON(ctx, s.rdb, subscriptionKey(customerID), sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// FindByCustomerID returns nil without error when the customer has no
// subscription.
func (s *SubscriptionStore) FindByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := getJSON(ctx, s.rdb, subscriptionKey(customerID), &sub)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *SubscriptionStore) Cancel(ctx context.Context, customerID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := getJSON(ctx, s.rdb, subscriptionKey(customerID), &sub); err != nil {
		return nil, err
	}
	sub.Status = "cancelled"
	sub.UpdatedAt = time.Now().UTC()
	if err := setJSON(ctx, s.rdb, subscriptionKey(customerID), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

type DonationStore struct {
	rdb *redis.Client
}

func donationKey(id string) string          { return "donation:" + id }
func restDonationsKey(restID string) string { return "donations:restaurant:" + restID }

func (s *DonationStore) Add(ctx context.Context, restaurantID, customerID string, meals int) (*models.Donation, error) {
	if restaurantID == "" {
		return nil, fmt.Errorf("restaurantId: %w", ErrValidation)
	}
	if meals <= 0 {
		return nil, fmt.Errorf("meals: %w", ErrValidation)
	}
	d := &models.Donation{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		CustomerID:   customerID,
		Meals:        meals,
		CreatedAt:    time.Now().UTC(),
	}
	if err := setJSON(ctx, s.rdb, donationKey(d.ID), d); err != nil {
		return nil, err
	}
	if err := s.rdb.SAdd(ctx, restDonationsKey(restaurantID), d.ID).Err(); err != nil {
		return nil, fmt.Errorf("index donation %s: %w", d.ID, err)
	}
	return d, nil
}

func (s *DonationStore) FindByRestaurantID(ctx context.Context, restaurantID string) ([]models.Donation, error) {
	ids, err := s.rdb.SMembers(ctx, restDonationsKey(restaurantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("scan donations for %s: %w", restaurantID, err)
	}
	out := make([]models.Donation, 0, len(ids))
	for _, id := range ids {
		var d models.Donation
		if err := getJSON(ctx, s.rdb, donationKey(id), &d); err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// QuestStore tracks gamification counters. Callers treat failures here as
// non-critical.
type QuestStore struct {
	rdb *redis.Client
}

func questKey(customerID string) string { return "quest:" + customerID }

// PointsPerOrder is credited to the customer's loyalty balance for each
// placed order.
const PointsPerOrder = 10

func (s *QuestStore) IncrOrdersPlaced(ctx context.Context, customerID string) error {
	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, questKey(customerID), "orders_placed", 1)
	pipe.HIncrBy(ctx, questKey(customerID), "total_points", PointsPerOrder)
	pipe.HSet(ctx, questKey(customerID), "updated_at", time.Now().Unix())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("advance quest for %s: %w", customerID, err)
	}
	return nil
}

func (s *QuestStore) Progress(ctx context.Context, customerID string) (*models.QuestProgress, error) {
	data, err := s.rdb.HGetAll(ctx, questKey(customerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read quest for %s: %w", customerID, err)
	}
	p := &models.QuestProgress{CustomerID: customerID}
	if v := data["orders_placed"]; v != "" {
		p.OrdersPlaced, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := data["total_points"]; v != "" {
		p.TotalPoints, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := data["updated_at"]; v != "" {
		ts, _ := strconv.ParseInt(v, 10, 64)
		p.UpdatedAt = time.Unix(ts, 0).UTC()
	}
	return p, nil
}
