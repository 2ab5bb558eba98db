package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type locationMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type authorizationMessage struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

const metersPerDegree = 111320.0

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

// drift returns a point up to maxMeters away from lat/lon.
func drift(lat, lon, maxMeters float64) (float64, float64) {
	d := rand.Float64() * maxMeters
	theta := rand.Float64() * 2 * math.Pi
	dLat := d * math.Cos(theta) / metersPerDegree
	dLon := d * math.Sin(theta) / (metersPerDegree * math.Cos(lat*math.Pi/180))
	return lat + dLat, lon + dLon
}

func publishJSON(client mqtt.Client, topic string, v any) {
	payload, _ := json.Marshal(v)
	token := client.Publish(topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("publish to %s: %v", topic, err)
		return
	}
	log.Printf("published to %s: %s", topic, payload)
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <customer_id> <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	customerID := os.Args[1]
	intervalSec, err := strconv.Atoi(os.Args[2])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}
	permission := "authorized"
	if v := os.Getenv("DEVICE_PERMISSION"); v != "" {
		permission = v
	}
	centerLat := envFloat("CENTER_LAT", -6.2088)
	centerLon := envFloat("CENTER_LON", 106.8456)
	spread := envFloat("SPREAD_METERS", 8000)

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("rescue-mock-device-" + customerID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	authTopic := fmt.Sprintf("/rescue/customer/%s/authorization", customerID)
	locTopic := fmt.Sprintf("/rescue/customer/%s/location", customerID)
	permTopic := fmt.Sprintf("/rescue/customer/%s/permission", customerID)

	// answer every permission request the way the user configured the device
	token := client.Subscribe(permTopic, 1, func(c mqtt.Client, _ mqtt.Message) {
		go publishJSON(c, authTopic, authorizationMessage{Status: permission, Timestamp: time.Now().Unix()})
	})
	if token.Wait() && token.Error() != nil {
		log.Fatalf("subscribe %s: %v", permTopic, token.Error())
	}

	log.Printf("connected to %s as %s, publishing every %ds...", broker, customerID, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		lat, lon := drift(centerLat, centerLon, spread)
		publishJSON(client, locTopic, locationMessage{
			Latitude:  lat,
			Longitude: lon,
			Timestamp: time.Now().Unix(),
		})
	}
}
