package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"food-marketplace/api/models"
)

// LocationStore keeps one live fix per rider in a rider:{id} hash, merged
// field-wise on each write so presence flags survive location updates.
type LocationStore struct {
	rdb *redis.Client
}

func riderKey(id string) string      { return "rider:" + id }
func riderOrderKey(id string) string { return "rider:order:" + id }

// SetLocation upserts the rider's current fix. No staleness or ordering
// check is applied: the last write wins.
func (s *LocationStore) SetLocation(ctx context.Context, loc models.DeliveryLocation) (*models.DeliveryLocation, error) {
	if loc.RiderID == "" {
		return nil, ErrMissingRiderID
	}
	loc.UpdatedAt = time.Now().UTC()

	fields := map[string]interface{}{
		"rider_id":    loc.RiderID,
		"order_id":    loc.OrderID,
		"latitude":    loc.Latitude,
		"longitude":   loc.Longitude,
		"last_update": loc.UpdatedAt.Unix(),
	}
	if err := s.rdb.HSet(ctx, riderKey(loc.RiderID), fields).Err(); err != nil {
		return nil, fmt.Errorf("set location for %s: %w", loc.RiderID, err)
	}
	if loc.OrderID != "" {
		if err := s.rdb.Set(ctx, riderOrderKey(loc.OrderID), loc.RiderID, 0).Err(); err != nil {
			return nil, fmt.Errorf("index location by order %s: %w", loc.OrderID, err)
		}
	}
	return &loc, nil
}

// ByRiderID returns the rider's latest fix, or nil when the rider has never
// reported one.
func (s *LocationStore) ByRiderID(ctx context.Context, riderID string) (*models.DeliveryLocation, error) {
	data, err := s.rdb.HGetAll(ctx, riderKey(riderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get location for %s: %w", riderID, err)
	}
	if len(data) == 0 || data["latitude"] == "" {
		return nil, nil
	}
	return fixFromHash(riderID, data), nil
}

// ByOrderID returns the fix of the rider currently serving the order, or
// nil. A rider who has since reported against a different order no longer
// answers for this one.
func (s *LocationStore) ByOrderID(ctx context.Context, orderID string) (*models.DeliveryLocation, error) {
	riderID, err := s.rdb.Get(ctx, riderOrderKey(orderID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup rider for order %s: %w", orderID, err)
	}
	loc, err := s.ByRiderID(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.OrderID != orderID {
		return nil, nil
	}
	return loc, nil
}

func (s *LocationStore) MarkActive(ctx context.Context, riderID string, active bool) error {
	fields := map[string]interface{}{
		"rider_id":  riderID,
		"is_active": strconv.FormatBool(active),
	}
	if active {
		fields["last_update"] = time.Now().Unix()
	}
	if err := s.rdb.HSet(ctx, riderKey(riderID), fields).Err(); err != nil {
		return fmt.Errorf("mark rider %s active=%v: %w", riderID, active, err)
	}
	return nil
}

func (s *LocationStore) MarkBusy(ctx context.Context, riderID string, busy bool) error {
	if err := s.rdb.HSet(ctx, riderKey(riderID), "is_busy", strconv.FormatBool(busy)).Err(); err != nil {
		return fmt.Errorf("mark rider %s busy=%v: %w", riderID, busy, err)
	}
	return nil
}

// Rider is a presence row joined with the latest fix, for dispatch scans
// and the riders listing.
type Rider struct {
	models.RiderState
	Fix *models.DeliveryLocation `json:"fix,omitempty"`
}

func (s *LocationStore) ListRiders(ctx context.Context) ([]Rider, error) {
	keys, err := s.rdb.Keys(ctx, "rider:*").Result()
	if err != nil {
		return nil, fmt.Errorf("scan riders: %w", err)
	}
	riders := make([]Rider, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, "rider:order:") {
			continue
		}
		riderID := strings.TrimPrefix(key, "rider:")
		data, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil || len(data) == 0 {
			continue
		}
		r := Rider{
			RiderState: models.RiderState{
				RiderID:  riderID,
				IsActive: data["is_active"] == "true",
				IsBusy:   data["is_busy"] == "true",
			},
		}
		if data["latitude"] != "" {
			r.Fix = fixFromHash(riderID, data)
		}
		riders = append(riders, r)
	}
	return riders, nil
}

// FreeActiveRiders returns riders available for assignment, each with a
// usable fix.
func (s *LocationStore) FreeActiveRiders(ctx context.Context) ([]Rider, error) {
	riders, err := s.ListRiders(ctx)
	if err != nil {
		return nil, err
	}
	free := riders[:0]
	for _, r := range riders {
		if r.IsActive && !r.IsBusy && r.Fix != nil {
			free = append(free, r)
		}
	}
	return free, nil
}

// ResetStaleBusyRiders frees busy riders whose last fix is older than
// timeout, returning the ids that were reset.
func (s *LocationStore) ResetStaleBusyRiders(ctx context.Context, timeout time.Duration) ([]string, error) {
	riders, err := s.ListRiders(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-timeout)
	var reset []string
	for _, r := range riders {
		if !r.IsBusy || r.Fix == nil || r.Fix.UpdatedAt.After(cutoff) {
			continue
		}
		if err := s.MarkBusy(ctx, r.RiderID, false); err != nil {
			return reset, err
		}
		reset = append(reset, r.RiderID)
	}
	return reset, nil
}

func fixFromHash(riderID string, data map[string]string) *models.DeliveryLocation {
	lat, _ := strconv.ParseFloat(data["latitude"], 64)
	lng, _ := strconv.ParseFloat(data["longitude"], 64)
	ts, _ := strconv.ParseInt(data["last_update"], 10, 64)
	return &models.DeliveryLocation{
		RiderID:   riderID,
		OrderID:   data["order_id"],
		Latitude:  lat,
		Longitude: lng,
		UpdatedAt: time.Unix(ts, 0).UTC(),
	}
}
