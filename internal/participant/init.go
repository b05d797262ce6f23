package participant

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/distribution"
	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
	"github.com/wso2/informed-consent-api/internal/system/middleware"
	"github.com/wso2/informed-consent-api/internal/system/stores"
)

// NewStore creates and returns a new participant response store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newResponseStore(dbClient)
}

// Initialize sets up the participant module and registers routes.
// Participant routes are public; response listings and signatures are researcher facing.
func Initialize(
	api *gin.RouterGroup,
	researcherAuth gin.HandlerFunc,
	registry *stores.StoreRegistry,
	forms FormReader,
	selector distribution.Selector,
	settings config.ParticipantConfig,
) ParticipantService {
	service := newParticipantService(registry, forms, selector, settings)
	handler := newParticipantHandler(service, settings)

	registerRoutes(api, researcherAuth, handler)

	return service
}

// registerRoutes registers all participant routes
func registerRoutes(api *gin.RouterGroup, researcherAuth gin.HandlerFunc, handler *participantHandler) {
	// POST /api/v1/studies/:studyCode/responses - Identity step for a distributed study
	api.POST("/studies/:studyCode/responses", middleware.RequireJSON(), handler.submitStudyIdentity)

	// POST /api/v1/consent-forms/:formId/responses - Identity step on a specific form
	api.POST("/consent-forms/:formId/responses", middleware.RequireJSON(), handler.submitFormIdentity)

	// GET /api/v1/responses/:responseId - Signing session
	api.GET("/responses/:responseId", handler.getSigningSession)

	// PUT /api/v1/responses/:responseId/consent - Grant or withhold consent
	api.PUT("/responses/:responseId/consent", middleware.RequireJSON(), handler.recordConsent)

	researcher := api.Group("", researcherAuth)

	// GET /api/v1/consent-forms/:formId/responses - Responses pinned to a form
	researcher.GET("/consent-forms/:formId/responses", handler.listFormResponses)

	// GET /api/v1/responses/:responseId/signature - Stored signature image
	researcher.GET("/responses/:responseId/signature", handler.getSignature)
}
