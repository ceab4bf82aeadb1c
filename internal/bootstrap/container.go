package bootstrap

import (
	"context"
	"log"

	"agent-sim-be/internal/config"
	"agent-sim-be/internal/controller"
	"agent-sim-be/internal/pkg/logger"
	"agent-sim-be/internal/repository/memory"
	"agent-sim-be/internal/service"
	"agent-sim-be/internal/websocket"
	"agent-sim-be/pkg/convo/dispatch"
	"agent-sim-be/pkg/convo/extract"
	"agent-sim-be/pkg/convo/intent"
	"agent-sim-be/pkg/convo/prompt"
	"agent-sim-be/pkg/convo/research"
	"agent-sim-be/pkg/nlu"
	"agent-sim-be/pkg/simulation"

	pktNats "agent-sim-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const sessionEventsTopic = "SESSION_EVENTS"

type Container struct {
	// Controllers
	ConversationController controller.IConversationController
	CatalogController      controller.ICatalogController
	SimulationController   controller.ISimulationController

	// Background Services (Exposed for main.go to run)
	NotifierService service.INotifierService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	stdLogger := log.Default()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Conversation Pipeline
	sessionRepo := memory.NewSessionRepository()
	nluClient := nlu.NewHTTPClient(cfg.NLU.BaseURL, cfg.NLU.APIKey)
	engine := simulation.NewHTTPEngine(cfg.Engine.BaseURL)

	extractor := extract.NewOrchestrator(nluClient, cfg.NLU.ExtractTimeout, stdLogger)
	classifier := intent.NewClassifier(nluClient, cfg.NLU.IntentTimeout, stdLogger)
	researcher := research.NewMerger(nluClient, cfg.NLU.SearchTimeout, cfg.NLU.MaxSearchResults, stdLogger)
	builder := prompt.NewBuilder()

	dispatcher := dispatch.NewDispatcher(
		extractor,
		classifier,
		researcher,
		engine,
		builder,
		cfg.Engine.StartTimeout,
		stdLogger,
	)

	// 4. Services
	publisherService := service.NewPublisherService(sessionEventsTopic, pubSub)
	notifierService := service.NewNotifierService(pubSub, sessionEventsTopic, wsHub, natsPub, wsLogger)

	conversationService := service.NewConversationService(
		sessionRepo,
		dispatcher,
		builder,
		publisherService,
		sysLogger,
	)
	catalogService := service.NewCatalogService()

	// 5. Controllers
	return &Container{
		ConversationController: controller.NewConversationController(conversationService, wsHub),
		CatalogController:      controller.NewCatalogController(catalogService),
		SimulationController:   controller.NewSimulationController(conversationService),

		NotifierService: notifierService,
		WebSocketHub:    wsHub,
	}
}
