package bootstrap

import (
	"context"
	"fmt"

	"collab-workspace-be/internal/config"
	"collab-workspace-be/internal/controller"
	"collab-workspace-be/internal/handler"
	"collab-workspace-be/internal/pkg/encryption"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/pkg/serverutils"
	"collab-workspace-be/internal/repository/contract"
	"collab-workspace-be/internal/repository/implementation"
	"collab-workspace-be/internal/repository/memory"
	"collab-workspace-be/internal/repository/unitofwork"
	"collab-workspace-be/internal/service"
	"collab-workspace-be/internal/websocket"

	pktNats "collab-workspace-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Realtime
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub
	Relay           *websocket.Relay

	TokenVerifier *serverutils.TokenVerifier
	Logger        logger.ILogger

	closers []func()
}

// NewContainer wires every component. db may be nil when the memory storage driver is selected.
// An unusable message key is fatal; NATS and Redis are optional.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	wsLogger := logger.NewIsolatedLogger(cfg.App.RealtimeLogFilePath)
	c := &Container{Logger: sysLogger}

	codec, err := encryption.NewCodec(cfg.Security.MessageEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("message encryption key: %w", err)
	}

	var uowFactory unitofwork.RepositoryFactory
	if cfg.Database.Driver == config.DriverMemory || db == nil {
		sysLogger.Warn("Bootstrap", "Using in-memory storage, data is lost on restart", nil)
		uowFactory = memory.NewStore().NewRepositoryFactory()
	} else {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger.NewWatermillAdapter(sysLogger))
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Infrastructure
	// NATS
	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "NATS publisher unavailable, chat notifications disabled", map[string]interface{}{"error": err.Error()})
	}
	if natsPub != nil {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// Redis
	var rateLimitRepo contract.RateLimitRepository
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		sysLogger.Warn("Bootstrap", "Redis unavailable, realtime rate limiting disabled", map[string]interface{}{"error": err.Error()})
		rdb.Close()
	} else {
		rateLimitRepo = implementation.NewRateLimitRepository(rdb)
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	// 4. Services
	notifier := service.NewNotificationPublisher(eventPublisher, sysLogger)
	chatService := service.NewChatService(uowFactory, codec, notifier, sysLogger, cfg.Realtime.MessageEditWindow)
	accessService := service.NewAccessService(uowFactory, cfg.Realtime.MembershipCacheTTL)
	memberService := service.NewWorkspaceMemberService(uowFactory)
	rateLimitService := service.NewRateLimitService(rateLimitRepo, cfg.Realtime.EventLimit, cfg.Realtime.EventWindow, wsLogger)
	publisherService := service.NewPublisherService(cfg.Realtime.EventsTopic, pubSub, logger.NewWatermillAdapter(sysLogger))

	// 5. Realtime
	registry := websocket.NewRegistry()
	hub := websocket.NewHub(wsLogger)
	go hub.Run()
	router := websocket.NewRouter(registry, hub, chatService, accessService, memberService, rateLimitService, wsLogger)

	c.TokenVerifier = serverutils.NewTokenVerifier(cfg.Security.JWTSecret)
	c.WebSocketHub = hub
	c.Relay = websocket.NewRelay(pubSub, cfg.Realtime.EventsTopic, router.Rooms(), wsLogger)
	c.RealtimeHandler = handler.NewRealtimeHandler(hub, router, c.TokenVerifier, wsLogger)

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService, accessService, publisherService)

	return c, nil
}

// Close releases the bus and broker connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
