package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"food-marketplace/api/models"
	"food-marketplace/api/track"
)

// Tracking CLI: polls an order's live rider location and prints each fix,
// the terminal equivalent of the customer's tracking map.
func main() {
	serverURL := flag.String("server", "http://localhost:8080", "API server base URL")
	orderID := flag.String("order", "", "order id to track")
	interval := flag.Duration("interval", track.DefaultInterval, "poll interval")
	flag.Parse()

	if *orderID == "" {
		log.Fatal("order id required (-order)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client := &track.Client{
		BaseURL:  *serverURL,
		Interval: *interval,
		OnUpdate: func(fix *models.DeliveryLocation) {
			if fix == nil {
				log.Println("No rider location yet")
				return
			}
			age := time.Since(fix.UpdatedAt).Round(time.Second)
			log.Printf("Rider %s at %f, %f (%s ago)", fix.RiderID, fix.Latitude, fix.Longitude, age)
		},
		OnError: func(err error) {
			log.Printf("Poll failed: %v", err)
		},
	}

	if err := client.Track(ctx, *orderID); err != nil && err != context.Canceled {
		log.Fatalf("Tracking stopped: %v", err)
	}
}
