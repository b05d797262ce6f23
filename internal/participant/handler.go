package participant

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/participant/model"
	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/utils"
)

// participantHandler handles HTTP requests for participant responses
type participantHandler struct {
	service  ParticipantService
	settings config.ParticipantConfig
}

// newParticipantHandler creates a new participant handler
func newParticipantHandler(service ParticipantService, settings config.ParticipantConfig) *participantHandler {
	return &participantHandler{
		service:  service,
		settings: settings,
	}
}

func (h *participantHandler) bindIdentity(c *gin.Context) (model.IdentityRequest, bool) {
	var req model.IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindError(c, err)
		return req, false
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.SendBindError(c, err)
		return req, false
	}
	return req, true
}

func identityStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

// submitStudyIdentity handles POST /studies/:studyCode/responses
func (h *participantHandler) submitStudyIdentity(c *gin.Context) {
	req, ok := h.bindIdentity(c)
	if !ok {
		return
	}

	response, created, serviceErr := h.service.SubmitIdentity(c.Request.Context(), c.Param("studyCode"), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(identityStatus(created), response)
}

// submitFormIdentity handles POST /consent-forms/:formId/responses
func (h *participantHandler) submitFormIdentity(c *gin.Context) {
	req, ok := h.bindIdentity(c)
	if !ok {
		return
	}

	if h.settings.IsStrictCreate() {
		response, serviceErr := h.service.CreateResponseStrict(c.Request.Context(), c.Param("formId"), req)
		if serviceErr != nil {
			utils.SendError(c, serviceErr)
			return
		}
		c.JSON(http.StatusCreated, response)
		return
	}

	response, created, serviceErr := h.service.SubmitIdentityForForm(c.Request.Context(), c.Param("formId"), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(identityStatus(created), response)
}

// getSigningSession handles GET /responses/:responseId
func (h *participantHandler) getSigningSession(c *gin.Context) {
	session, serviceErr := h.service.GetSigningSession(c.Request.Context(), c.Param("responseId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, session)
}

// recordConsent handles PUT /responses/:responseId/consent
func (h *participantHandler) recordConsent(c *gin.Context) {
	var req model.ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	response, serviceErr := h.service.RecordConsent(ctx, c.Param("responseId"), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	session, serviceErr := h.service.GetSigningSession(ctx, response.ID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, session)
}

// listFormResponses handles GET /consent-forms/:formId/responses
func (h *participantHandler) listFormResponses(c *gin.Context) {
	responses, serviceErr := h.service.ListResponsesForForm(c.Request.Context(), c.Param("formId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, model.ResponseList{
		Responses: responses,
		Total:     len(responses),
	})
}

// getSignature handles GET /responses/:responseId/signature
func (h *participantHandler) getSignature(c *gin.Context) {
	signature, serviceErr := h.service.GetSignature(c.Request.Context(), c.Param("responseId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, signature.ContentType, signature.Content)
}
