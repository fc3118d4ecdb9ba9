package models

import "time"

type Restaurant struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"ownerId,omitempty"`
	Name          string     `json:"name"`
	Cuisine       string     `json:"cuisine,omitempty"`
	Description   string     `json:"description,omitempty"`
	Menu          []MenuItem `json:"menu"`
	Location      *GeoPoint  `json:"location,omitempty"`
	Geohash       string     `json:"geohash,omitempty"`
	AverageRating float64    `json:"averageRating"`
	TotalRatings  int        `json:"totalRatings"`
	DeliveryTime  string     `json:"deliveryTime,omitempty"`
	IsLocalLegend bool       `json:"isLocalLegend"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type MenuItem struct {
	ItemID      string  `json:"itemId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Available   bool    `json:"available"`
}

type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// RestaurantRating is one entry in the flat ratings collection, written when
// a customer rates a delivered order. It backs the per-restaurant rating
// list, stats and the aggregate recalculation.
type RestaurantRating struct {
	OrderID      string    `json:"orderId"`
	RestaurantID string    `json:"restaurantId"`
	CustomerID   string    `json:"customerId"`
	Rating       int       `json:"rating"`
	Review       string    `json:"review,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
