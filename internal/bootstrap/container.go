package bootstrap

import (
	"context"
	"log"

	"candidate-router/internal/config"
	"candidate-router/internal/controller"
	"candidate-router/internal/handler"
	"candidate-router/internal/pkg/logger"
	"candidate-router/internal/repository/memory"
	"candidate-router/internal/repository/unitofwork"
	"candidate-router/internal/service"
	"candidate-router/pkg/bucket"
	"candidate-router/pkg/escalation"
	"candidate-router/pkg/events"
	"candidate-router/pkg/intent"
	"candidate-router/pkg/legacy"
	"candidate-router/pkg/livefacts"
	"candidate-router/pkg/response"
	"candidate-router/pkg/rollout"

	pktNats "candidate-router/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	MessageController    controller.IMessageController
	RolloutController    controller.IRolloutController
	EscalationController controller.IEscalationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	Scheduler       *rollout.Scheduler
	AuditHandler    *handler.AuditHandler
	NatsSubscriber  *pktNats.Subscriber

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	// 2. Event Bus (in-process, samples)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS
	var eventPublisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.NatsSubscriber = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	var lease rollout.Lease
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Scheduler runs without a lease", err)
		_ = rdb.Close()
	} else {
		lease = rollout.NewRedisLease(rdb, cfg.Rollout.LeaseKey, cfg.Rollout.LeaseTTL)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 4. Domain Core
	table, err := loadIntentTable(cfg.Intent.PatternsPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load intent patterns: %v", err)
	}
	classifier := intent.NewClassifier(table, intent.DefaultScoringConfig(), intent.WithLogger(sysLogger))
	synthesizer := response.NewDefaultSynthesizer(sysLogger)
	gate := escalation.NewGate(uowFactory, table, eventPublisher, sysLogger)

	var resolver livefacts.Resolver = livefacts.NoopResolver{}
	if cfg.LiveFacts.BaseURL != "" {
		resolver = livefacts.NewHTTPResolver(cfg.LiveFacts.BaseURL, cfg.LiveFacts.Timeout, cfg.LiveFacts.RPS, cfg.LiveFacts.Burst, sysLogger)
	} else {
		log.Printf("[WARN] LIVE_FACTS_BASE_URL not set, responses will use no-data templates")
	}

	var legacyResponder legacy.Responder = legacy.HandoffResponder{}
	if cfg.Legacy.URL != "" {
		legacyResponder = legacy.NewHTTPResponder(cfg.Legacy.URL, cfg.Legacy.Timeout, sysLogger)
	} else {
		log.Printf("[WARN] LEGACY_RESPONDER_URL not set, legacy traffic gets a human handoff")
	}

	settings, err := rollout.SettingsFromConfig(cfg.Rollout)
	if err != nil {
		log.Fatalf("[FATAL] Invalid rollout configuration: %v", err)
	}
	rolloutController := rollout.NewController(uowFactory, settings, eventPublisher, sysLogger,
		rollout.WithPercentageCache(memory.NewRolloutCacheRepository(cfg.Rollout.PercentageCacheTTL)),
	)
	if cfg.Rollout.BootstrapInitial {
		if phase, started, err := rolloutController.EnsureStarted(context.Background()); err != nil {
			log.Printf("[WARN] Failed to open the initial rollout phase: %v", err)
		} else if started {
			log.Printf("[INFO] Opened rollout phase %s at %d%%", phase.Name, phase.RolloutPercentage)
		}
	}

	scheduler, err := rollout.NewScheduler(rolloutController, cfg.Rollout.Schedule, lease, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	c.Scheduler = scheduler

	router := bucket.NewRouter(rolloutController, uowFactory, sysLogger)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.SampleTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.SampleTopic, uowFactory, router, sysLogger)

	messageService := service.NewMessageService(
		router,
		classifier,
		resolver,
		synthesizer,
		gate,
		legacyResponder,
		publisherService,
		service.MessageServiceConfig{
			FactsTimeout:  cfg.LiveFacts.Timeout,
			ShadowCompare: cfg.Routing.ShadowCompare,
		},
		sysLogger,
	)
	rolloutService := service.NewRolloutService(rolloutController, sysLogger)
	escalationService := service.NewEscalationService(gate)

	// Audit trail
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	c.AuditHandler = handler.NewAuditHandler(auditLogger, sysLogger)

	// 6. Controllers
	c.MessageController = controller.NewMessageController(messageService)
	c.RolloutController = controller.NewRolloutController(rolloutService)
	c.EscalationController = controller.NewEscalationController(escalationService)

	return c
}

func loadIntentTable(path string) (*intent.Table, error) {
	if path == "" {
		return intent.DefaultTable()
	}
	log.Printf("[INFO] Loading intent patterns from %s", path)
	return intent.LoadTable(path)
}

// Close releases infrastructure connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
