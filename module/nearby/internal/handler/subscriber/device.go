package subscriber

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
)

const (
	locationTopic      = "/rescue/customer/+/location"
	authorizationTopic = "/rescue/customer/+/authorization"
)

type sessionRouter interface {
	RoutePosition(customerID string, c domain.Coordinate) bool
	RouteAuthorization(customerID string, status domain.AuthorizationStatus) bool
}

type locationMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type authorizationMessage struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// DeviceSubscriber feeds customer devices' positions and permission changes
// into their open sessions.
type DeviceSubscriber struct {
	client mqtt.Client
	router sessionRouter
}

func NewDeviceSubscriber(client mqtt.Client, router sessionRouter) *DeviceSubscriber {
	return &DeviceSubscriber{client: client, router: router}
}

func (s *DeviceSubscriber) Start() error {
	token := s.client.SubscribeMultiple(map[string]byte{
		locationTopic:      1,
		authorizationTopic: 1,
	}, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *DeviceSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	customerID, kind, err := parseTopic(msg.Topic())
	if err != nil {
		log.Printf("unexpected topic: %v", err)
		return
	}

	switch kind {
	case "location":
		s.handleLocation(customerID, msg.Payload())
	case "authorization":
		s.handleAuthorization(customerID, msg.Payload())
	}
}

func (s *DeviceSubscriber) handleLocation(customerID string, payload []byte) {
	var raw locationMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		log.Printf("invalid location message: %v", err)
		return
	}
	if err := validateLocationMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	s.router.RoutePosition(customerID, domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude})
}

func (s *DeviceSubscriber) handleAuthorization(customerID string, payload []byte) {
	var raw authorizationMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		log.Printf("invalid authorization message: %v", err)
		return
	}
	status, err := domain.ParseAuthorizationStatus(raw.Status)
	if err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	if !s.router.RouteAuthorization(customerID, status) {
		log.Printf("no open session for customer %s", customerID)
	}
}

// parseTopic splits /rescue/customer/{id}/{kind}.
func parseTopic(topic string) (customerID, kind string, err error) {
	parts := strings.Split(strings.TrimPrefix(topic, "/"), "/")
	if len(parts) != 4 || parts[0] != "rescue" || parts[1] != "customer" || parts[2] == "" {
		return "", "", fmt.Errorf("%q", topic)
	}
	switch parts[3] {
	case "location", "authorization":
		return parts[2], parts[3], nil
	}
	return "", "", fmt.Errorf("%q", topic)
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
