package models

import "time"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// statusRank orders the normal lifecycle; cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:        0,
	OrderStatusConfirmed:      1,
	OrderStatusPreparing:      2,
	OrderStatusReady:          3,
	OrderStatusOutForDelivery: 4,
	OrderStatusDelivered:      5,
}

func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the order may move from s to next.
// Re-applying the current status is allowed as a no-op. Forward moves may
// skip intermediate states; moving backwards is not allowed, and terminal
// states accept nothing further. Cancellation is allowed from any
// non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

type Order struct {
	ID                string            `json:"id"`
	CustomerID        string            `json:"customerId"`
	RestaurantID      string            `json:"restaurantId"`
	DeliveryPartnerID string            `json:"deliveryPartnerId,omitempty"`
	Items             []OrderItem       `json:"items"`
	TotalAmount       float64           `json:"totalAmount"`
	DeliveryAddress   Address           `json:"deliveryAddress"`
	Status            OrderStatus       `json:"status"`
	Ratings           map[string]Rating `json:"ratings,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	DeliveredAt       *time.Time        `json:"deliveredAt,omitempty"`
}

type OrderItem struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Address struct {
	Street     string  `json:"street"`
	City       string  `json:"city,omitempty"`
	PostalCode string  `json:"postalCode,omitempty"`
	Latitude   float64 `json:"lat,omitempty"`
	Longitude  float64 `json:"lng,omitempty"`
}

// Rating is one party's review of a completed order. The map key on the
// order is the rater role: "customer" or "restaurant".
type Rating struct {
	Rating  int       `json:"rating"`
	Review  string    `json:"review,omitempty"`
	RatedAt time.Time `json:"ratedAt"`
}

const (
	RaterRoleCustomer   = "customer"
	RaterRoleRestaurant = "restaurant"
)

// ActiveDelivery reports whether a live location join makes sense: a rider
// is assigned and the order has not reached a terminal state.
func (o *Order) ActiveDelivery() bool {
	return o.DeliveryPartnerID != "" && !o.Status.Terminal()
}
