package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/handlers"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/services/analytics"
	"github.com/ternarybob/respondo/internal/services/auth"
	"github.com/ternarybob/respondo/internal/services/broadcast"
	"github.com/ternarybob/respondo/internal/services/config"
	"github.com/ternarybob/respondo/internal/services/dispatch"
	"github.com/ternarybob/respondo/internal/services/intel"
	"github.com/ternarybob/respondo/internal/services/knowledge"
	"github.com/ternarybob/respondo/internal/services/kv"
	"github.com/ternarybob/respondo/internal/services/leads"
	"github.com/ternarybob/respondo/internal/services/llm"
	"github.com/ternarybob/respondo/internal/services/mailer"
	"github.com/ternarybob/respondo/internal/services/messaging"
	"github.com/ternarybob/respondo/internal/services/pdf"
	"github.com/ternarybob/respondo/internal/services/reply"
	"github.com/ternarybob/respondo/internal/services/transform"
	"github.com/ternarybob/respondo/internal/services/workflows"
	"github.com/ternarybob/respondo/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Runtime settings (key/value storage)
	KVService     *kv.Service
	ConfigService interfaces.ConfigService

	// Content pipeline
	LLMService       interfaces.LLMService
	TransformService *transform.Service
	PDFExtractor     *pdf.Extractor
	KnowledgeService interfaces.KnowledgeService

	// Conversation pipeline
	IntentService   interfaces.IntentService
	ReplyService    interfaces.ReplyService
	LeadService     interfaces.LeadService
	WorkflowService interfaces.WorkflowService
	DispatchService interfaces.DispatchService

	// Channels
	SenderRegistry interfaces.SenderRegistry

	// Admin console
	AuthService      interfaces.AuthService
	AnalyticsService interfaces.AnalyticsService
	BroadcastService interfaces.BroadcastService

	// Supporting services
	MailerService *mailer.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	WebhookHandler   *handlers.WebhookHandler
	ChatHandler      *handlers.ChatHandler
	WSHandler        *handlers.WebSocketHandler
	AuthHandler      *handlers.AuthHandler
	AdminHandler     *handlers.AdminHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	WorkflowHandler  *handlers.WorkflowHandler
	KVHandler        *handlers.KVHandler
	BroadcastHandler *handlers.BroadcastHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Bool("llm_configured", app.LLMService.IsConfigured(context.Background())).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger) and seeds runtime defaults
func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	// Seed default runtime settings. Existing values are left alone so
	// operator changes survive restarts.
	ctx := context.Background()
	kvStorage := storageManager.KVStorage()
	for _, def := range common.GetDefaultKVValues() {
		if _, err := kvStorage.Get(ctx, def.Key); err == nil {
			continue
		}
		if err := kvStorage.Set(ctx, def.Key, def.Value, def.Description); err != nil {
			a.Logger.Warn().Err(err).Str("key", def.Key).Msg("Failed to seed default setting")
		}
	}

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	kvStorage := a.StorageManager.KVStorage()

	// Runtime settings
	a.KVService = kv.NewService(kvStorage, a.Logger)

	configService, err := config.NewService(a.Config, kvStorage, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize config service: %w", err)
	}
	a.ConfigService = configService
	a.Logger.Debug().Msg("Config service initialized")

	// LLM provider factory. Never nil; IsConfigured reports whether a
	// usable API key exists and callers degrade to deterministic replies.
	a.LLMService = llm.NewProviderFactory(
		&a.Config.Gemini,
		&a.Config.Claude,
		&a.Config.LLM,
		kvStorage,
		a.Logger,
	)

	// Content ingestion
	a.TransformService = transform.NewService(a.Logger)
	a.PDFExtractor = pdf.NewExtractor(a.Logger)
	a.KnowledgeService = knowledge.NewService(
		a.StorageManager.KnowledgeStorage(),
		a.TransformService,
		a.PDFExtractor,
		&a.Config.Knowledge,
		a.Logger,
	)
	a.Logger.Debug().Msg("Knowledge service initialized")

	// Conversation pipeline
	a.IntentService = intel.NewService(kvStorage, a.Logger)
	a.MailerService = mailer.NewService(kvStorage, a.Logger)
	a.LeadService = leads.NewService(
		a.StorageManager.LeadStorage(),
		a.LLMService,
		kvStorage,
		a.MailerService,
		&a.Config.Forwarding,
		a.Logger,
	)
	a.ReplyService = reply.NewService(a.LLMService, &a.Config.Bot, a.Logger)

	workflowService := workflows.NewService(a.StorageManager.WorkflowStorage(), a.Logger)
	if dir := a.Config.Workflows.SeedDir; dir != "" {
		if err := workflowService.SeedFromDir(context.Background(), dir); err != nil {
			a.Logger.Warn().Err(err).Str("dir", dir).Msg("Failed to seed workflow rules")
		}
	}
	a.WorkflowService = workflowService
	a.Logger.Debug().Msg("Workflow service initialized")

	a.DispatchService = dispatch.NewService(
		a.StorageManager,
		a.KnowledgeService,
		a.IntentService,
		a.ReplyService,
		a.LeadService,
		a.WorkflowService,
		&a.Config.Bot,
		a.Logger,
	)
	a.Logger.Debug().Msg("Dispatch service initialized")

	// Outbound channel senders
	a.SenderRegistry = messaging.NewRegistry(&a.Config.Channels, kvStorage, a.Logger)

	// Admin console services
	a.AuthService = auth.NewService(a.StorageManager.AccountStorage(), &a.Config.Auth, a.Logger)
	a.AnalyticsService = analytics.NewService(a.StorageManager, a.Logger)

	broadcastService := broadcast.NewService(a.StorageManager, a.SenderRegistry, &a.Config.Broadcast, a.Logger)
	if err := broadcastService.Start(context.Background()); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to start broadcast scheduler")
	} else {
		a.Logger.Debug().Msg("Broadcast scheduler started")
	}
	a.BroadcastService = broadcastService

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.WebhookHandler = handlers.NewWebhookHandler(a.DispatchService, a.SenderRegistry, &a.Config.Channels, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.DispatchService, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.DispatchService, a.Logger)
	a.AuthHandler = handlers.NewAuthHandler(a.AuthService, a.Logger)
	a.AdminHandler = handlers.NewAdminHandler(a.StorageManager, a.ReplyService, a.Logger)
	a.AnalyticsHandler = handlers.NewAnalyticsHandler(a.AnalyticsService, a.Logger)
	a.KnowledgeHandler = handlers.NewKnowledgeHandler(a.KnowledgeService, a.Logger)
	a.WorkflowHandler = handlers.NewWorkflowHandler(a.WorkflowService, a.Logger)
	a.KVHandler = handlers.NewKVHandler(a.KVService, a.Logger)
	a.BroadcastHandler = handlers.NewBroadcastHandler(a.BroadcastService, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.BroadcastService != nil {
		a.BroadcastService.Stop()
		a.Logger.Info().Msg("Broadcast scheduler stopped")
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
