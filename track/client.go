// Package track implements the customer-side polling client for live
// delivery tracking. It polls the order service on a fixed interval; each
// fetch is synchronous within the loop, so requests never overlap, and
// repeated failures back off exponentially.
package track

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"food-marketplace/api/models"
)

const (
	DefaultInterval = 5 * time.Second
	maxBackoffMult  = 8
)

// Client polls GET {BaseURL}/api/v1/delivery/track/{orderID} and reports
// each result through OnUpdate. A nil fix means "no location yet" (order
// gone, no rider assigned, or rider silent) and is not an error.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Interval   time.Duration

	// OnUpdate receives every poll result. Required.
	OnUpdate func(fix *models.DeliveryLocation)

	// OnError receives transport and server failures, after the backoff
	// for the next attempt has been decided. Optional.
	OnError func(err error)
}

type trackResponse struct {
	Location *models.DeliveryLocation `json:"location"`
}

// Track polls until ctx is cancelled. The immediate first fetch happens
// before any ticking.
func (c *Client) Track(ctx context.Context, orderID string) error {
	if c.OnUpdate == nil {
		return fmt.Errorf("track: OnUpdate callback required")
	}
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: interval}
	}

	failures := 0
	for {
		if err := c.fetch(ctx, httpClient, orderID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			if c.OnError != nil {
				c.OnError(err)
			}
		} else {
			failures = 0
		}

		wait := interval
		if failures > 0 {
			mult := 1 << (failures - 1)
			if mult > maxBackoffMult {
				mult = maxBackoffMult
			}
			wait = interval * time.Duration(mult)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) fetch(ctx context.Context, httpClient *http.Client, orderID string) error {
	url := fmt.Sprintf("%s/api/v1/delivery/track/%s", c.BaseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body trackResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode track response: %w", err)
		}
		c.OnUpdate(body.Location)
		return nil
	case http.StatusNotFound, http.StatusBadRequest:
		// Order gone or no rider assigned yet: a "no location" state,
		// not a failure.
		c.OnUpdate(nil)
		return nil
	default:
		return fmt.Errorf("track request failed with status %d", resp.StatusCode)
	}
}
