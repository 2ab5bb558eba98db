package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/publisher"
)

var _ publisher.PermissionRequester = (*PermissionRequester)(nil)

const permissionTopic = "/rescue/customer/%s/permission"

type PermissionRequester struct {
	client paho.Client
}

func NewPermissionRequester(client paho.Client) *PermissionRequester {
	return &PermissionRequester{client: client}
}

type permissionMessage struct {
	Request   string `json:"request"`
	Timestamp int64  `json:"timestamp"`
}

func (r *PermissionRequester) RequestPermission(ctx context.Context, customerID string) error {
	payload, err := json.Marshal(permissionMessage{Request: "location", Timestamp: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("marshal permission request: %w", err)
	}

	token := r.client.Publish(fmt.Sprintf(permissionTopic, customerID), 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
