package bootstrap

import (
	"context"
	"log"
	"time"

	"drheal-be/internal/config"
	"drheal-be/internal/controller"
	"drheal-be/internal/pkg/logger"
	"drheal-be/internal/pkg/mailer"
	"drheal-be/internal/repository/unitofwork"
	"drheal-be/internal/service"
	internalWS "drheal-be/internal/websocket"
	"drheal-be/pkg/agent"
	"drheal-be/pkg/embedding"
	"drheal-be/pkg/embedding/jina"
	"drheal-be/pkg/events"
	"drheal-be/pkg/knowledge"
	"drheal-be/pkg/llm"
	"drheal-be/pkg/llm/factory"
	"drheal-be/pkg/metrics"
	"drheal-be/pkg/ragchain"
	"drheal-be/pkg/retrieval"
	"drheal-be/pkg/vectorstore"
	"drheal-be/pkg/websearch"

	pktNats "drheal-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController           controller.IAuthController
	SearchController         controller.ISearchController
	ChatController           controller.IChatController
	ConversationController   controller.IConversationController
	MedicalHistoryController controller.IMedicalHistoryController
	HealthController         controller.IHealthController
	AlertController          controller.IAlertController

	// Background Services (Exposed for main.go to run)
	ConsumerService       service.IConsumerService
	KnowledgeEventService service.IKnowledgeEventService
	AlertHub              *internalWS.Hub

	// Shared infrastructure
	Logger          logger.ILogger
	Metrics         *metrics.Recorder
	Redis           redis.UniversalClient
	KnowledgeLoader *knowledge.Loader
	EventPublisher  events.Publisher

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	rec := metrics.New()

	c := &Container{Logger: sysLogger, Metrics: rec}

	// 2. Infrastructure
	// Redis
	c.Redis = connectRedis(cfg.App.RedisURL)
	if c.Redis != nil {
		c.closers = append(c.closers, func() { _ = c.Redis.Close() })
	}

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.EventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Knowledge & Generation
	embedder := embedding.NewCachedProvider(NewEmbeddingProvider(cfg), c.Redis, 0, sysLogger)

	index := NewIndex(db, cfg)

	facade := retrieval.NewFacade(embedder, index, rec, sysLogger)
	searchCache := retrieval.NewCachedSearcher(facade, c.Redis, cfg.Search.CacheTTL, sysLogger)
	c.KnowledgeLoader = knowledge.NewLoader(cfg.Knowledge.DataDir, embedder, index, sysLogger, rec)

	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		BaseURL:     llmBaseURL(cfg),
		APIKey:      llmAPIKey(cfg),
		Temperature: cfg.Ai.LLMTemperature,
		MaxTokens:   cfg.Ai.LLMMaxTokens,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	generator := llm.NewResilientClient(llmProvider, llm.ResilienceConfig{
		Timeout:        cfg.Ai.LLMTimeout,
		MaxAttempts:    cfg.Ai.LLMMaxAttempts,
		BackoffBase:    cfg.Ai.LLMBackoffBase,
		BreakerEnabled: cfg.Ai.LLMBreakerEnabled,
	}, rec, llmLogger)

	workflow := agent.NewWorkflow(facade, generator, rec, sysLogger)
	chain := ragchain.NewChain(facade, generator, sysLogger)
	webSearch := websearch.NewClient(cfg.Search.WebSearchBaseURL, cfg.Search.WebSearchTimeout, sysLogger)

	// 4. Services
	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" && cfg.SMTP.AlertTo != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
		)
	}

	c.AlertHub = internalWS.NewHub(c.Redis, sysLogger)

	publisherService := service.NewPublisherService(service.TopicMedicalHistoryRecord, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		service.TopicMedicalHistoryRecord,
		uowFactory,
		c.EventPublisher,
		c.AlertHub,
		emailService,
		cfg.SMTP.AlertTo,
	)
	if natsSub != nil {
		c.KnowledgeEventService = service.NewKnowledgeEventService(natsSub, searchCache)
		c.closers = append(c.closers, natsSub.Close)
	}

	authService := service.NewAuthService(uowFactory, minutes(cfg.App.JwtExpireMinutes))
	searchService := service.NewSearchService(searchCache, facade, cfg.Knowledge.VectorStore, webSearch)
	chatService := service.NewChatService(chain)
	conversationService := service.NewConversationService(uowFactory, workflow, publisherService)
	medicalHistoryService := service.NewMedicalHistoryService(uowFactory)
	healthService := service.NewHealthService(db, facade, llmProvider, rec)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.SearchController = controller.NewSearchController(searchService)
	c.ChatController = controller.NewChatController(chatService)
	c.ConversationController = controller.NewConversationController(conversationService)
	c.MedicalHistoryController = controller.NewMedicalHistoryController(medicalHistoryService)
	c.HealthController = controller.NewHealthController(healthService, rec.Registry())
	c.AlertController = controller.NewAlertController(c.AlertHub)

	return c
}

// Start launches the background consumers.
func (c *Container) Start(ctx context.Context) error {
	go c.AlertHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.KnowledgeEventService != nil {
		if err := c.KnowledgeEventService.Start(ctx); err != nil {
			log.Printf("[WARN] Failed to subscribe to knowledge events: %v", err)
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func connectRedis(url string) redis.UniversalClient {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (caches and shared rate limits disabled)", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// NewEmbeddingProvider selects the embedding backend named by EMBEDDING_PROVIDER.
func NewEmbeddingProvider(cfg *config.Config) embedding.Provider {
	dim := cfg.Ai.EmbeddingDimension
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel, dim)
	case "jina":
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
		return jina.NewProvider(cfg.Keys.Jina, dim)
	case "local":
		log.Printf("[INFO] Using Embedding Provider: LOCAL HASHING")
		return embedding.NewHashingProvider(dim)
	default:
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, dim)
	}
}

// NewIndex selects the vector index named by VECTOR_STORE.
func NewIndex(db *gorm.DB, cfg *config.Config) vectorstore.Index {
	log.Printf("[INFO] Using Vector Store: %s", cfg.Knowledge.VectorStore)
	if cfg.Knowledge.VectorStore == "memory" {
		return vectorstore.NewMemoryIndex(cfg.Ai.EmbeddingDimension)
	}
	return vectorstore.NewPgvectorIndex(db, cfg.Ai.EmbeddingDimension)
}

func llmAPIKey(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "gemini":
		return cfg.Keys.GoogleGemini
	case "openai":
		return cfg.Keys.OpenAI
	case "huggingface":
		return cfg.Keys.HuggingFace
	default:
		return ""
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMBaseURL == "" && cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.LLMBaseURL
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
