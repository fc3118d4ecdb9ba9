package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPromoInput() CreatePromoInput {
	return CreatePromoInput{
		RestaurantID:    "r1",
		RestaurantName:  "Plov House",
		Title:           "Lunch deal",
		DiscountPercent: 20,
		Code:            "LUNCH20",
		ValidUntil:      time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}
}

func TestCreatePromo(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.Promos.Create(ctx, validPromoInput())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.Active)

	found, err := s.Promos.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "LUNCH20", found.Code)
}

func TestCreatePromoValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreatePromoInput)
	}{
		{"missing restaurantId", func(in *CreatePromoInput) { in.RestaurantID = "" }},
		{"missing title", func(in *CreatePromoInput) { in.Title = "" }},
		{"missing code", func(in *CreatePromoInput) { in.Code = "" }},
		{"zero discount", func(in *CreatePromoInput) { in.DiscountPercent = 0 }},
		{"discount over 100", func(in *CreatePromoInput) { in.DiscountPercent = 150 }},
		{"bad validUntil", func(in *CreatePromoInput) { in.ValidUntil = "tomorrow" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPromoInput()
			tt.mutate(&in)
			_, err := s.Promos.Create(ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFindAllActivePromos(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	current, err := s.Promos.Create(ctx, validPromoInput())
	require.NoError(t, err)

	expired := validPromoInput()
	expired.Code = "OLD10"
	expired.ValidUntil = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	_, err = s.Promos.Create(ctx, expired)
	require.NoError(t, err)

	active, err := s.Promos.FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, current.ID, active[0].ID)
}

func TestUpdatePromo(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.Promos.Create(ctx, validPromoInput())
	require.NoError(t, err)

	title := "Dinner deal"
	discount := 30
	updated, err := s.Promos.Update(ctx, p.ID, UpdatePromoInput{Title: &title, DiscountPercent: &discount})
	require.NoError(t, err)
	assert.Equal(t, "Dinner deal", updated.Title)
	assert.Equal(t, 30, updated.DiscountPercent)

	// Deactivating removes the promo from the active listing.
	inactive := false
	_, err = s.Promos.Update(ctx, p.ID, UpdatePromoInput{Active: &inactive})
	require.NoError(t, err)

	active, err := s.Promos.FindAllActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	byRestaurant, err := s.Promos.FindByRestaurantID(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, byRestaurant, 1)

	_, err = s.Promos.Update(ctx, "unknown", UpdatePromoInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePromoDiscountValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.Promos.Create(ctx, validPromoInput())
	require.NoError(t, err)

	// Updates obey the same 1..100 range as creation.
	for _, discount := range []int{0, -5, 150} {
		d := discount
		_, err = s.Promos.Update(ctx, p.ID, UpdatePromoInput{DiscountPercent: &d})
		assert.ErrorIs(t, err, ErrValidation)
	}

	kept, err := s.Promos.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, kept.DiscountPercent)

	d := 50
	updated, err := s.Promos.Update(ctx, p.ID, UpdatePromoInput{DiscountPercent: &d})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.DiscountPercent)
}
