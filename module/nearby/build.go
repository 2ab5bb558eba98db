package nearby

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	handler "github.com/nandanugg/rescue-nearby/module/nearby/internal/handler/http"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/handler/subscriber"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/cache/redis"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/database/postgres"
	mqttpub "github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/publisher/mqtt"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/rescue-nearby/module/nearby/service"
)

type Options struct {
	JWTSecret             []byte
	DirectoryRadiusMeters float64
	DirectoryCacheTTL     time.Duration
}

type Module struct {
	SessionSvc      *service.SessionService
	DirectorySvc    *service.DirectoryService
	sessionHandler  *handler.SessionHandler
	merchantHandler *handler.MerchantHandler
	subscriber      *subscriber.DeviceSubscriber
}

func Build(ctx context.Context, db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, redisClient *goredis.Client, opts Options) (*Module, error) {
	merchantRepo := postgres.NewMerchantRepo(db)
	if err := merchantRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("merchant schema: %w", err)
	}
	merchantCache := redis.NewMerchantCache(redisClient, opts.DirectoryCacheTTL)

	framePub, err := rabbitmq.NewFramePublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("frame publisher: %w", err)
	}
	permissions := mqttpub.NewPermissionRequester(mqttClient)

	directorySvc := service.NewDirectoryService(merchantRepo, merchantCache)
	// map and list presentations share the exchange; frames carry their mode
	sessionSvc := service.NewSessionService(directorySvc, permissions, framePub, framePub, service.SessionConfig{
		DirectoryRadiusMeters: opts.DirectoryRadiusMeters,
	})

	return &Module{
		SessionSvc:      sessionSvc,
		DirectorySvc:    directorySvc,
		sessionHandler:  handler.NewSessionHandler(sessionSvc, handler.RequireCustomer(opts.JWTSecret)),
		merchantHandler: handler.NewMerchantHandler(directorySvc),
		subscriber:      subscriber.NewDeviceSubscriber(mqttClient, sessionSvc),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.sessionHandler.Register(r)
	m.merchantHandler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// Shutdown closes every open screen session.
func (m *Module) Shutdown() {
	m.SessionSvc.CloseAll()
}
