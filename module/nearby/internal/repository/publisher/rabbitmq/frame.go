package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/publisher"
)

var _ publisher.Renderer = (*FramePublisher)(nil)

const (
	ExchangeName = "rescue.nearby"
	QueueName    = "nearby_frames"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// FramePublisher fans frames out to presentation clients. Map and list
// frames share the exchange and are told apart by the mode field.
type FramePublisher struct {
	ch channel
}

func NewFramePublisher(conn *amqp.Connection) (*FramePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &FramePublisher{ch: ch}, nil
}

type frameMessage struct {
	SessionID  string         `json:"session_id"`
	CustomerID string         `json:"customer_id"`
	Mode       string         `json:"mode"`
	Visible    bool           `json:"visible"`
	State      string         `json:"state"`
	Radius     string         `json:"radius"`
	Groups     []groupMessage `json:"groups"`
	Error      string         `json:"error,omitempty"`
	Version    uint64         `json:"version"`
	Timestamp  int64          `json:"timestamp"`
}

type groupMessage struct {
	Radius    string            `json:"radius"`
	Meters    float64           `json:"meters"`
	Merchants []merchantMessage `json:"merchants"`
}

type merchantMessage struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	LogoURL   string  `json:"logo_url,omitempty"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *FramePublisher) Render(ctx context.Context, frame *domain.Frame) error {
	body, err := json.Marshal(toFrameMessage(frame))
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Headers: amqp.Table{
			"session_id": frame.SessionID,
			"mode":       string(frame.Mode),
		},
		Body: body,
	})
}

func toFrameMessage(f *domain.Frame) frameMessage {
	groups := make([]groupMessage, len(f.Groups))
	for i, g := range f.Groups {
		merchants := make([]merchantMessage, len(g.Merchants))
		for j, m := range g.Merchants {
			merchants[j] = merchantMessage{
				ID:        m.ID,
				Name:      m.Name,
				LogoURL:   m.LogoURL,
				Category:  m.Category,
				Latitude:  m.Location.Lat,
				Longitude: m.Location.Lon,
			}
		}
		groups[i] = groupMessage{
			Radius:    g.Band.Label(),
			Meters:    g.Band.Meters(),
			Merchants: merchants,
		}
	}

	return frameMessage{
		SessionID:  f.SessionID,
		CustomerID: f.CustomerID,
		Mode:       string(f.Mode),
		Visible:    f.Visible,
		State:      string(f.State),
		Radius:     f.Radius.Label(),
		Groups:     groups,
		Error:      f.Error,
		Version:    f.Version,
		Timestamp:  f.RenderedAt.Unix(),
	}
}
