package main

import (
	"flag"
	"log"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
)

// Rider simulator: connects to the location websocket and pushes a slowly
// drifting GPS fix, the way a rider's phone would.
func main() {
	serverURL := flag.String("server", "ws://localhost:8080", "API server websocket base URL")
	riderID := flag.String("rider", "sim-rider-1", "rider id to report as")
	orderID := flag.String("order", "", "order id to tag fixes with")
	secret := flag.String("secret", "my-secret-key", "JWT signing secret")
	lat := flag.Float64("lat", 40.7128, "starting latitude")
	lng := flag.Float64("lng", -74.0060, "starting longitude")
	interval := flag.Duration("interval", 10*time.Second, "fix interval")
	flag.Parse()

	token, err := signRiderToken(*riderID, *secret)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	url := *serverURL + "/ws/rider?rider_id=" + *riderID + "&token=" + token
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	curLat, curLng := *lat, *lng
	for range ticker.C {
		fix := map[string]interface{}{
			"riderId": *riderID,
			"orderId": *orderID,
			"lat":     curLat,
			"lng":     curLng,
		}
		if err := c.WriteJSON(fix); err != nil {
			log.Fatalf("Failed to send fix: %v", err)
		}
		log.Printf("Fix sent: %f, %f", curLat, curLng)
		curLat += 0.001
		curLng += 0.001
	}
}

func signRiderToken(riderID, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"rider_id": riderID,
	})
	return token.SignedString([]byte(secret))
}
