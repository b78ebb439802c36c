// Package container provides dependency injection for all singleton services
package container

import (
	"context"
	"fmt"

	"github.com/flipkraft/flipkraft-go/internal/application/services"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/answer"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/email"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/knowledge"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/persistence/database"
	leadsRepo "github.com/flipkraft/flipkraft-go/internal/infrastructure/persistence/leads"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	SessionService       *services.SessionService
	EngagementService    *services.EngagementService
	TriggerService       *services.CaptureTriggerService
	EventService         *services.EventProcessingService
	ChatService          *services.ChatService
	LeadService          *services.LeadService
	LeadAnalyticsService *services.LeadAnalyticsService
	AuthService          *services.AuthService

	// Infrastructure Dependencies
	Logger               *logging.ChanneledLogger
	DB                   *database.DB
	Sessions             *stores.SessionsStore
	Broadcaster          messaging.Broadcaster
	DashboardBroadcaster *messaging.DashboardBroadcaster
	Retriever            *knowledge.Retriever
	EngagementConfig     *config.Engagement
}

// NewContainer creates and wires all singleton services
func NewContainer(ctx context.Context, engagementCfg *config.Engagement, logger *logging.ChanneledLogger) (*Container, error) {
	db, err := database.NewConnectionWithLogger(config.DBDriver, config.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open lead database: %w", err)
	}

	if err := leadsRepo.NewTableCreator().CreateSchema(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create lead schema: %w", err)
	}

	repo := leadsRepo.NewRepository(db, logger)
	sessions := stores.NewSessionsStore(config.MaxSessions, logger)
	broadcaster := messaging.NewSSEBroadcaster(logger)

	retriever, err := knowledge.NewRetriever(config.KnowledgeBasePath, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}

	var answerer answer.Service
	if config.GeminiAPIKey != "" {
		client, err := answer.NewGeminiClient(ctx, config.GeminiAPIKey, config.GeminiModel, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create answer client: %w", err)
		}
		answerer = client
	} else {
		logger.System().Warn("GEMINI_API_KEY not set, answering from knowledge base only")
		answerer = answer.NewKnowledgeOnly(logger)
	}

	var emailSvc email.Service
	if svc, err := email.NewService(); err != nil {
		logger.System().Warn("Email notifications disabled", "reason", err.Error())
	} else {
		emailSvc = svc
	}

	engagementSvc := services.NewEngagementService(engagementCfg, logger)
	triggerSvc := services.NewCaptureTriggerService(engagementCfg, logger)
	eventSvc := services.NewEventProcessingService(sessions, engagementSvc, triggerSvc, repo, engagementCfg, logger)
	analyticsSvc := services.NewLeadAnalyticsService(repo, repo, sessions, logger)

	return &Container{
		SessionService:       services.NewSessionService(sessions, logger),
		EngagementService:    engagementSvc,
		TriggerService:       triggerSvc,
		EventService:         eventSvc,
		ChatService:          services.NewChatService(retriever, answerer, eventSvc, engagementCfg, logger),
		LeadService:          services.NewLeadService(sessions, engagementSvc, repo, repo, emailSvc, logger),
		LeadAnalyticsService: analyticsSvc,
		AuthService:          services.NewAuthService(logger),

		Logger:               logger,
		DB:                   db,
		Sessions:             sessions,
		Broadcaster:          broadcaster,
		DashboardBroadcaster: messaging.NewDashboardBroadcaster(analyticsSvc),
		Retriever:            retriever,
		EngagementConfig:     engagementCfg,
	}, nil
}

// Close releases infrastructure resources held by the container.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
