package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-marketplace/api/models"
)

func TestWishlistEmptyByDefault(t *testing.T) {
	s, _ := newTestStore(t)

	w, err := s.Wishlists.FindByCustomerID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", w.CustomerID)
	assert.Empty(t, w.Items)
}

func TestWishlistAddAndRemove(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	w, err := s.Wishlists.AddItem(ctx, "c1", models.WishlistItem{Type: "restaurant", ItemID: "r1", Name: "Plov House"})
	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.False(t, w.Items[0].AddedAt.IsZero())

	// Duplicates are ignored.
	w, err = s.Wishlists.AddItem(ctx, "c1", models.WishlistItem{Type: "restaurant", ItemID: "r1"})
	require.NoError(t, err)
	assert.Len(t, w.Items, 1)

	w, err = s.Wishlists.AddItem(ctx, "c1", models.WishlistItem{Type: "menuItem", ItemID: "i1"})
	require.NoError(t, err)
	assert.Len(t, w.Items, 2)

	w, err = s.Wishlists.RemoveItem(ctx, "c1", "restaurant", "r1")
	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.Equal(t, "menuItem", w.Items[0].Type)
}

func TestWishlistAddValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Wishlists.AddItem(ctx, "c1", models.WishlistItem{Type: "cuisine", ItemID: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Wishlists.AddItem(ctx, "c1", models.WishlistItem{Type: "restaurant"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubscriptionLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sub, err := s.Subscriptions.FindByCustomerID(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, sub)

	sub, err = s.Subscriptions.Create(ctx, "c1", "weekly", map[string]string{"cuisine": "uzbek"})
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)

	sub, err = s.Subscriptions.Cancel(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", sub.Status)

	_, err = s.Subscriptions.Cancel(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriptionValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Subscriptions.Create(ctx, "", "weekly", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Subscriptions.Create(ctx, "c1", "daily", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQuestProgress(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.Quests.Progress(ctx, "c1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, p.OrdersPlaced)

	require.NoError(t, s.Quests.IncrOrdersPlaced(ctx, "c1"))
	require.NoError(t, s.Quests.IncrOrdersPlaced(ctx, "c1"))

	p, err = s.Quests.Progress(ctx, "c1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.OrdersPlaced)
	assert.EqualValues(t, 2*PointsPerOrder, p.TotalPoints)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestDonationAddAndList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	d, err := s.Donations.Add(ctx, "r1", "c1", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())

	_, err = s.Donations.Add(ctx, "r1", "", 2)
	require.NoError(t, err)
	_, err = s.Donations.Add(ctx, "r2", "c1", 5)
	require.NoError(t, err)

	donations, err := s.Donations.FindByRestaurantID(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, donations, 2)

	donations, err = s.Donations.FindByRestaurantID(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, donations)
}

func TestDonationValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Donations.Add(ctx, "", "c1", 3)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Donations.Add(ctx, "r1", "c1", 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Donations.Add(ctx, "r1", "c1", -2)
	assert.ErrorIs(t, err, ErrValidation)
}
