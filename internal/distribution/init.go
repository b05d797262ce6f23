package distribution

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/system/config"
)

// Initialize sets up the distribution selector and registers its public routes.
func Initialize(router gin.IRouter, api *gin.RouterGroup, cfg config.DistributionConfig, forms FormFinder, random RandomSource) Selector {
	selector := NewSelector(forms, random)
	handler := newDistributionHandler(selector, cfg.ParticipantBasePath)

	registerRoutes(router, api, handler)

	return selector
}

func registerRoutes(router gin.IRouter, api *gin.RouterGroup, handler *distributionHandler) {
	// GET /distribute/:studyCode - Redirect a participant to a random variant
	router.GET("/distribute/:studyCode", handler.distribute)

	// GET /api/v1/studies/:studyCode/assignment - Same selection as JSON
	api.GET("/studies/:studyCode/assignment", handler.assign)
}
