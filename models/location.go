package models

import "time"

// DeliveryLocation is a rider's latest reported fix. One live document per
// rider; a new fix overwrites the previous one, no history is kept.
type DeliveryLocation struct {
	RiderID   string    `json:"riderId"`
	OrderID   string    `json:"orderId,omitempty"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RiderState is the rider presence record kept alongside the fix, used by
// the dispatcher to pick free riders.
type RiderState struct {
	RiderID  string `json:"riderId"`
	IsActive bool   `json:"isActive"`
	IsBusy   bool   `json:"isBusy"`
}
