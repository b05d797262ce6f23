package consentform

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/system/constants"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/utils"
)

// consentFormHandler handles HTTP requests for consent forms
type consentFormHandler struct {
	service ConsentFormService
}

// newConsentFormHandler creates a new consent form handler
func newConsentFormHandler(service ConsentFormService) *consentFormHandler {
	return &consentFormHandler{
		service: service,
	}
}

// createForm handles POST /consent-forms
func (h *consentFormHandler) createForm(c *gin.Context) {
	var req model.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	form, serviceErr := h.service.CreateForm(c.Request.Context(), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, form)
}

// getForm handles GET /consent-forms/:formId
func (h *consentFormHandler) getForm(c *gin.Context) {
	form, serviceErr := h.service.GetForm(c.Request.Context(), c.Param("formId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, form)
}

// listForms handles GET /consent-forms
func (h *consentFormHandler) listForms(c *gin.Context) {
	limit := constants.DefaultPageSize
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil {
			utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "limit must be an integer"))
			return
		}
		limit = l
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		o, err := strconv.Atoi(offsetStr)
		if err != nil {
			utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "offset must be an integer"))
			return
		}
		offset = o
	}
	if err := utils.ValidatePagination(limit, offset); err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, err.Error()))
		return
	}

	forms, total, serviceErr := h.service.ListForms(c.Request.Context(), limit, offset)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, model.ListResponse{
		Forms:  forms,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// listStudyForms handles GET /studies/:studyCode/consent-forms
func (h *consentFormHandler) listStudyForms(c *gin.Context) {
	forms, serviceErr := h.service.ListFormsByStudyCode(c.Request.Context(), c.Param("studyCode"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, model.ListResponse{
		Forms: forms,
		Total: len(forms),
		Limit: len(forms),
	})
}
