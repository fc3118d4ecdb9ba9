package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"

	"food-marketplace/api/models"
)

type RestaurantStore struct {
	rdb *redis.Client
}

func restaurantKey(id string) string { return "restaurant:" + id }

const restaurantsIndexKey = "restaurants"

type CreateRestaurantInput struct {
	OwnerID       string            `json:"ownerId"`
	Name          string            `json:"name"`
	Cuisine       string            `json:"cuisine"`
	Description   string            `json:"description"`
	Menu          []models.MenuItem `json:"menu"`
	Location      *models.GeoPoint  `json:"location"`
	DeliveryTime  string            `json:"deliveryTime"`
	IsLocalLegend bool              `json:"isLocalLegend"`
}

func (s *RestaurantStore) Create(ctx context.Context, in CreateRestaurantInput) (*models.Restaurant, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name: %w", ErrValidation)
	}

	now := time.Now().UTC()
	r := &models.Restaurant{
		ID:            uuid.NewString(),
		OwnerID:       in.OwnerID,
		Name:          in.Name,
		Cuisine:       in.Cuisine,
		Description:   in.Description,
		Menu:          in.Menu,
		Location:      in.Location,
		DeliveryTime:  in.DeliveryTime,
		IsLocalLegend: in.IsLocalLegend,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.DeliveryTime == "" {
		r.DeliveryTime = "30-45 min"
	}
	if r.Location != nil {
		r.Geohash = geohash.Encode(r.Location.Latitude, r.Location.Longitude)
	}

	if err := setJSON(ctx, s.rdb, restaurantKey(r.ID), r); err != nil {
		return nil, err
	}
	if err := s.rdb.SAdd(ctx, restaurantsIndexKey, r.ID).Err(); err != nil {
		return nil, fmt.Errorf("index restaurant %s: %w", r.ID, err)
	}
	return r, nil
}

func (s *RestaurantStore) FindByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := getJSON(ctx, s.rdb, restaurantKey(id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RestaurantStore) FindAllActive(ctx context.Context) ([]*models.Restaurant, error) {
	ids, err := s.rdb.SMembers(ctx, restaurantsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("scan restaurants: %w", err)
	}
	out := make([]*models.Restaurant, 0, len(ids))
	for _, id := range ids {
		r, err := s.FindByID(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RestaurantStore) UpdateMenu(ctx context.Context, id string, menu []models.MenuItem) (*models.Restaurant, error) {
	r, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Menu = menu
	r.UpdatedAt = time.Now().UTC()
	if err := setJSON(ctx, s.rdb, restaurantKey(id), r); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateLocation moves the restaurant and rederives its geohash; a nil
// location clears both.
func (s *RestaurantStore) UpdateLocation(ctx context.Context, id string, loc *models.GeoPoint) (*models.Restaurant, error) {
	r, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Location = loc
	if loc != nil {
		r.Geohash = geohash.Encode(loc.Latitude, loc.Longitude)
	} else {
		r.Geohash = ""
	}
	r.UpdatedAt = time.Now().UTC()
	if err := setJSON(ctx, s.rdb, restaurantKey(id), r); err != nil {
		return nil, err
	}
	return r, nil
}

// SetRatingAggregate writes the recalculated rating summary onto the
// restaurant document.
func (s *RestaurantStore) SetRatingAggregate(ctx context.Context, id string, average float64, total int) error {
	r, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	r.AverageRating = average
	r.TotalRatings = total
	r.UpdatedAt = time.Now().UTC()
	return setJSON(ctx, s.rdb, restaurantKey(id), r)
}
