package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_created_total",
		Help: "The total number of orders created",
	})

	ordersDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_delivered_total",
		Help: "The total number of orders delivered",
	})

	activeRiders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "marketplace_active_riders",
		Help: "The number of riders with an open location socket",
	})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "marketplace_request_duration_seconds",
		Help:    "Time spent handling requests",
		Buckets: prometheus.DefBuckets,
	})
)

func (s *Server) metricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		requestDuration.Observe(time.Since(start).Seconds())
		return err
	}
}

// ServeMetrics exposes the prometheus exporter on its own listener; fiber
// cannot mount promhttp directly.
func ServeMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("Metrics listener stopped: %v", err)
	}
}
