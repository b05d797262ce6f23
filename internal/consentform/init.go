package consentform

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/system/database/provider"
	"github.com/wso2/informed-consent-api/internal/system/middleware"
	"github.com/wso2/informed-consent-api/internal/system/stores"
)

// NewStore creates and returns a new consent form store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newConsentFormStore(dbClient)
}

// Initialize sets up the consent form module and registers routes.
// Form management routes are researcher facing and sit behind researcherAuth.
func Initialize(api *gin.RouterGroup, researcherAuth gin.HandlerFunc, registry *stores.StoreRegistry) ConsentFormService {
	service := newConsentFormService(registry)
	handler := newConsentFormHandler(service)

	registerRoutes(api, researcherAuth, handler)

	return service
}

// registerRoutes registers all consent form routes
func registerRoutes(api *gin.RouterGroup, researcherAuth gin.HandlerFunc, handler *consentFormHandler) {
	researcher := api.Group("", researcherAuth)

	// POST /api/v1/consent-forms - Create form
	researcher.POST("/consent-forms", middleware.RequireJSON(), handler.createForm)

	// GET /api/v1/consent-forms - List forms
	researcher.GET("/consent-forms", handler.listForms)

	// GET /api/v1/studies/:studyCode/consent-forms - List variants of a study
	researcher.GET("/studies/:studyCode/consent-forms", handler.listStudyForms)

	// GET /api/v1/consent-forms/:formId - Get form, public so participants can read what they consent to
	api.GET("/consent-forms/:formId", handler.getForm)
}
