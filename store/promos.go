package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"food-marketplace/api/models"
)

type PromoStore struct {
	rdb *redis.Client
}

func promoKey(id string) string      { return "promo:" + id }
func restPromosKey(id string) string { return "promos:restaurant:" + id }

const activePromosKey = "promos:active"

type CreatePromoInput struct {
	RestaurantID    string `json:"restaurantId"`
	RestaurantName  string `json:"restaurantName"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DiscountPercent int    `json:"discountPercent"`
	Code            string `json:"code"`
	ValidUntil      string `json:"validUntil"`
}

func (s *PromoStore) Create(ctx context.Context, in CreatePromoInput) (*models.Promo, error) {
	switch {
	case in.RestaurantID == "":
		return nil, fmt.Errorf("restaurantId: %w", ErrValidation)
	case in.Title == "":
		return nil, fmt.Errorf("title: %w", ErrValidation)
	case in.Code == "":
		return nil, fmt.Errorf("code: %w", ErrValidation)
	case in.DiscountPercent <= 0 || in.DiscountPercent > 100:
		return nil, fmt.Errorf("discountPercent: %w", ErrValidation)
	}
	validUntil, err := time.Parse(time.RFC3339, in.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("validUntil: %w", ErrValidation)
	}

	p := &models.Promo{
		ID:              uuid.NewString(),
		RestaurantID:    in.RestaurantID,
		RestaurantName:  in.RestaurantName,
		Title:           in.Title,
		Description:     in.Description,
		DiscountPercent: in.DiscountPercent,
		Code:            in.Code,
		ValidUntil:      validUntil.UTC(),
		Active:          true,
		CreatedAt:       time.Now().UTC(),
	}
	if err := setJSON(ctx, s.rdb, promoKey(p.ID), p); err != nil {
		return nil, err
	}
	pipe := s.rdb.Pipeline()
	pipe.SAdd(ctx, activePromosKey, p.ID)
	pipe.SAdd(ctx, restPromosKey(p.RestaurantID), p.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("index promo %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *PromoStore) FindByID(ctx context.Context, id string) (*models.Promo, error) {
	var p models.Promo
	if err := getJSON(ctx, s.rdb, promoKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindAllActive returns active, unexpired promos.
func (s *PromoStore) FindAllActive(ctx context.Context) ([]*models.Promo, error) {
	ids, err := s.rdb.SMembers(ctx, activePromosKey).Result()
	if err != nil {
		return nil, fmt.Errorf("scan active promos: %w", err)
	}
	now := time.Now().UTC()
	out := make([]*models.Promo, 0, len(ids))
	for _, id := range ids {
		p, err := s.FindByID(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if p.Active && !p.Expired(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PromoStore) FindByRestaurantID(ctx context.Context, restaurantID string) ([]*models.Promo, error) {
	ids, err := s.rdb.SMembers(ctx, restPromosKey(restaurantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("scan promos for %s: %w", restaurantID, err)
	}
	out := make([]*models.Promo, 0, len(ids))
	for _, id := range ids {
		p, err := s.FindByID(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type UpdatePromoInput struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	DiscountPercent *int    `json:"discountPercent"`
	ValidUntil      *string `json:"validUntil"`
	Active          *bool   `json:"active"`
}

func (s *PromoStore) Update(ctx context.Context, id string, in UpdatePromoInput) (*models.Promo, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.DiscountPercent != nil {
		if *in.DiscountPercent <= 0 || *in.DiscountPercent > 100 {
			return nil, fmt.Errorf("discountPercent: %w", ErrValidation)
		}
		p.DiscountPercent = *in.DiscountPercent
	}
	if in.ValidUntil != nil {
		t, err := time.Parse(time.RFC3339, *in.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("validUntil: %w", ErrValidation)
		}
		p.ValidUntil = t.UTC()
	}
	if in.Active != nil {
		p.Active = *in.Active
		if p.Active {
			if err := s.rdb.SAdd(ctx, activePromosKey, id).Err(); err != nil {
				return nil, fmt.Errorf("index promo %s: %w", id, err)
			}
		} else {
			if err := s.rdb.SRem(ctx, activePromosKey, id).Err(); err != nil {
				return nil, fmt.Errorf("unindex promo %s: %w", id, err)
			}
		}
	}
	if err := setJSON(ctx, s.rdb, promoKey(id), p); err != nil {
		return nil, err
	}
	return p, nil
}
