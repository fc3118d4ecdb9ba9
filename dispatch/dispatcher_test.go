package dispatch

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-marketplace/api/config"
	"food-marketplace/api/models"
	"food-marketplace/api/store"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	st := store.NewWithClient(rdb)
	cfg := &config.Config{}
	return New(cfg, st, nil), st
}

func createPendingOrder(t *testing.T, st *store.Store, lat, lng float64) *models.Order {
	t.Helper()
	order, err := st.Orders.Create(context.Background(), store.CreateOrderInput{
		CustomerID:   "c1",
		RestaurantID: "r1",
		Items:        []models.OrderItem{{ItemID: "i1", Name: "Plov", Price: 10, Quantity: 1}},
		TotalAmount:  10,
		DeliveryAddress: &models.Address{
			Street: "Amir Temur 1", Latitude: lat, Longitude: lng,
		},
	})
	require.NoError(t, err)
	return order
}

func addFreeRider(t *testing.T, st *store.Store, riderID string, lat, lng float64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.Locations.MarkActive(ctx, riderID, true))
	_, err := st.Locations.SetLocation(ctx, models.DeliveryLocation{RiderID: riderID, Latitude: lat, Longitude: lng})
	require.NoError(t, err)
}

func TestAssignNearestRider(t *testing.T) {
	d, st := newTestDispatcher(t)
	ctx := context.Background()

	order := createPendingOrder(t, st, 41.30, 69.25)
	addFreeRider(t, st, "far", 41.40, 69.50)
	addFreeRider(t, st, "near", 41.31, 69.26)

	require.NoError(t, d.AssignNearestRider(ctx, order.ID))

	assigned, err := st.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "near", assigned.DeliveryPartnerID)

	riders, err := st.Locations.ListRiders(ctx)
	require.NoError(t, err)
	for _, r := range riders {
		if r.RiderID == "near" {
			assert.True(t, r.IsBusy)
		}
		if r.RiderID == "far" {
			assert.False(t, r.IsBusy)
		}
	}
}

func TestAssignNearestRiderPrefersRestaurantLocation(t *testing.T) {
	d, st := newTestDispatcher(t)
	ctx := context.Background()

	restaurant, err := st.Restaurants.Create(ctx, store.CreateRestaurantInput{
		Name:     "Plov House",
		Location: &models.GeoPoint{Latitude: 41.00, Longitude: 69.00},
	})
	require.NoError(t, err)

	order, err := st.Orders.Create(ctx, store.CreateOrderInput{
		CustomerID:      "c1",
		RestaurantID:    restaurant.ID,
		Items:           []models.OrderItem{{ItemID: "i1", Name: "Plov", Price: 10, Quantity: 1}},
		TotalAmount:     10,
		DeliveryAddress: &models.Address{Street: "x", Latitude: 41.50, Longitude: 69.50},
	})
	require.NoError(t, err)

	// nearRestaurant is closest to the pickup, nearCustomer to the dropoff.
	addFreeRider(t, st, "nearRestaurant", 41.01, 69.01)
	addFreeRider(t, st, "nearCustomer", 41.49, 69.49)

	require.NoError(t, d.AssignNearestRider(ctx, order.ID))

	assigned, err := st.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "nearRestaurant", assigned.DeliveryPartnerID)
}

func TestAssignNearestRiderNoCandidates(t *testing.T) {
	d, st := newTestDispatcher(t)
	ctx := context.Background()

	order := createPendingOrder(t, st, 41.30, 69.25)

	// Busy and offline riders are not candidates.
	addFreeRider(t, st, "busy", 41.31, 69.26)
	require.NoError(t, st.Locations.MarkBusy(ctx, "busy", true))
	_, err := st.Locations.SetLocation(ctx, models.DeliveryLocation{RiderID: "offline", Latitude: 41.31, Longitude: 69.26})
	require.NoError(t, err)

	require.NoError(t, d.AssignNearestRider(ctx, order.ID))

	unassigned, err := st.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, unassigned.DeliveryPartnerID)
	assert.Equal(t, models.OrderStatusPending, unassigned.Status)
}

func TestAssignNearestRiderSkipsHandledOrders(t *testing.T) {
	d, st := newTestDispatcher(t)
	ctx := context.Background()

	order := createPendingOrder(t, st, 41.30, 69.25)
	addFreeRider(t, st, "rider1", 41.31, 69.26)

	// Manually assigned already: re-dispatch must not reassign.
	_, err := st.Orders.AssignDeliveryPartner(ctx, order.ID, "manual")
	require.NoError(t, err)

	require.NoError(t, d.AssignNearestRider(ctx, order.ID))

	kept, err := st.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "manual", kept.DeliveryPartnerID)

	// Non-pending orders are skipped too.
	cancelled := createPendingOrder(t, st, 41.30, 69.25)
	_, err = st.Orders.UpdateStatus(ctx, cancelled.ID, models.OrderStatusCancelled)
	require.NoError(t, err)

	require.NoError(t, d.AssignNearestRider(ctx, cancelled.ID))
	skipped, err := st.Orders.FindByID(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Empty(t, skipped.DeliveryPartnerID)

	// Unknown order ids surface as errors.
	assert.ErrorIs(t, d.AssignNearestRider(ctx, "missing"), store.ErrNotFound)
}

func TestHaversine(t *testing.T) {
	// Tashkent to Samarkand is roughly 270 km.
	dist := haversine(41.2995, 69.2401, 39.6542, 66.9597)
	assert.InDelta(t, 270, dist, 15)

	assert.Zero(t, haversine(41.3, 69.2, 41.3, 69.2))
}
