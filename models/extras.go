package models

import "time"

type Promo struct {
	ID              string    `json:"id"`
	RestaurantID    string    `json:"restaurantId"`
	RestaurantName  string    `json:"restaurantName,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DiscountPercent int       `json:"discountPercent"`
	Code            string    `json:"code"`
	ValidUntil      time.Time `json:"validUntil"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (p *Promo) Expired(now time.Time) bool {
	return now.After(p.ValidUntil)
}

type Wishlist struct {
	CustomerID string         `json:"customerId"`
	Items      []WishlistItem `json:"items"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type WishlistItem struct {
	Type    string            `json:"type"` // "restaurant" or "menuItem"
	ItemID  string            `json:"itemId"`
	Name    string            `json:"name,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	AddedAt time.Time         `json:"addedAt"`
}

type Subscription struct {
	CustomerID  string            `json:"customerId"`
	PlanType    string            `json:"planType"` // weekly, biweekly, monthly
	Preferences map[string]string `json:"preferences,omitempty"`
	Status      string            `json:"status"` // active or cancelled
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Donation records meals a restaurant donated under the surplus-food
// program.
type Donation struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	CustomerID   string    `json:"customerId,omitempty"`
	Meals        int       `json:"meals"`
	CreatedAt    time.Time `json:"createdAt"`
}

// QuestProgress tracks the gamification counters advanced as a best-effort
// side effect of order placement.
type QuestProgress struct {
	CustomerID   string    `json:"customerId"`
	OrdersPlaced int64     `json:"ordersPlaced"`
	TotalPoints  int64     `json:"totalPoints"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
