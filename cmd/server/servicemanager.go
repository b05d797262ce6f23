package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/consentform"
	"github.com/wso2/informed-consent-api/internal/distribution"
	"github.com/wso2/informed-consent-api/internal/participant"
	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/database"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
	"github.com/wso2/informed-consent-api/internal/system/log"
	"github.com/wso2/informed-consent-api/internal/system/middleware"
	"github.com/wso2/informed-consent-api/internal/system/stores"
)

// Package-level service references
var (
	consentFormService  consentform.ConsentFormService
	distributionService distribution.Selector
	participantService  participant.ParticipantService
)

// registerServices wires every module onto the engine.
func registerServices(
	engine *gin.Engine,
	cfg *config.Config,
	dbClient provider.DBClientInterface,
	db *database.DB,
) {
	logger := log.GetLogger()

	registry := stores.NewStoreRegistry(
		dbClient,
		consentform.NewStore(dbClient),
		participant.NewStore(dbClient),
	)

	api := engine.Group("/api/v1")
	researcherAuth := middleware.BasicAuthMiddleware(cfg.Security)

	consentFormService = consentform.Initialize(api, researcherAuth, registry)
	logger.Info("ConsentForm module initialized")

	distributionService = distribution.Initialize(engine, api, cfg.Distribution, consentFormService, distribution.DefaultRandomSource())
	logger.Info("Distribution module initialized")

	participantService = participant.Initialize(api, researcherAuth, registry, consentFormService, distributionService, cfg.Participant)
	logger.Info("Participant module initialized",
		log.String("duplicate_policy", cfg.Participant.DuplicatePolicy))

	// Register health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}
