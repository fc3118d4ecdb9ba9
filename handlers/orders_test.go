package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-marketplace/api/models"
	"food-marketplace/api/store"
)

func orderPayload() map[string]interface{} {
	return map[string]interface{}{
		"customerId":   "c1",
		"restaurantId": "r1",
		"items": []map[string]interface{}{
			{"itemId": "i1", "name": "Plov", "price": 8.5, "quantity": 2},
		},
		"totalAmount":     17.0,
		"deliveryAddress": map[string]interface{}{"street": "Amir Temur 1", "city": "Tashkent"},
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	app, _ := newTestServer(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/orders/", orderPayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	order := body["order"].(map[string]interface{})
	assert.NotEmpty(t, order["id"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "c1", order["customerId"])
}

func TestCreateOrderEndpointRejectsEmptyBody(t *testing.T) {
	app, st := newTestServer(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A rejected order must leave nothing behind.
	pending, err := st.Orders.PendingOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCustomerOrdersRequiresQueryParam(t *testing.T) {
	app, _ := newTestServer(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/orders/customer", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Customer ID required", body["error"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/orders/restaurant", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Restaurant ID required", body["error"])
}

func TestGetOrderNotFound(t *testing.T) {
	app, _ := newTestServer(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateOrderStatusInvalid(t *testing.T) {
	app, _ := newTestServer(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/orders/", orderPayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["order"].(map[string]interface{})["id"].(string)

	resp, body = doJSON(t, app, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "shipped"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid status", body["error"])

	// Backwards transitions surface as 400 too.
	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssignDeliveryPartnerValidation(t *testing.T) {
	app, _ := newTestServer(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/orders/", orderPayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["order"].(map[string]interface{})["id"].(string)

	resp, body = doJSON(t, app, http.MethodPut, "/api/v1/orders/"+orderID+"/assign-delivery",
		map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Delivery partner ID required", body["error"])

	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/orders/missing/assign-delivery",
		map[string]interface{}{"deliveryPartnerId": "rider1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateOrder(t *testing.T) {
	app, st := newTestServer(t)
	ctx := context.Background()

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/orders/", orderPayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["order"].(map[string]interface{})["id"].(string)

	rating := map[string]interface{}{"rating": 5, "review": "Great", "customerId": "c1"}

	// Wrong customer.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/rate",
		map[string]interface{}{"rating": 5, "customerId": "someone-else"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not authorized to rate this order", body["error"])

	// Not delivered yet.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/rate", rating)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Order must be delivered before rating", body["error"])

	_, err := st.Orders.UpdateStatus(ctx, orderID, models.OrderStatusDelivered)
	require.NoError(t, err)

	// Rating out of range.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/rate",
		map[string]interface{}{"rating": 6, "customerId": "c1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Rating must be between 1 and 5", body["error"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/rate", rating)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ratings := body["order"].(map[string]interface{})["ratings"].(map[string]interface{})
	assert.Contains(t, ratings, "customer")

	// Second submission by the same customer is rejected.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/rate", rating)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The flat ratings collection picked up the entry even though the
	// restaurant itself is not onboarded.
	entries, err := st.Ratings.RestaurantRatings(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, orderID, entries[0].OrderID)

	// Missing order.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/missing/rate", rating)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateOrderUpdatesRestaurantAggregate(t *testing.T) {
	app, st := newTestServer(t)
	ctx := context.Background()

	r, err := st.Restaurants.Create(ctx, store.CreateRestaurantInput{Name: "Plov House"})
	require.NoError(t, err)

	payload := orderPayload()
	payload["restaurantId"] = r.ID
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/orders/", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["order"].(map[string]interface{})["id"].(string)

	_, err = st.Orders.UpdateStatus(ctx, orderID, models.OrderStatusDelivered)
	require.NoError(t, err)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/rate",
		map[string]interface{}{"rating": 4, "customerId": "c1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rated, err := st.Restaurants.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, rated.AverageRating)
	assert.Equal(t, 1, rated.TotalRatings)
}
