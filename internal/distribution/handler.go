package distribution

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/system/utils"
)

// AssignmentResponse tells the presentation layer which form variant a participant was routed to.
type AssignmentResponse struct {
	ConsentFormID string `json:"consentFormId"`
	RedirectPath  string `json:"redirectPath"`
}

type distributionHandler struct {
	selector Selector
	basePath string
}

func newDistributionHandler(selector Selector, participantBasePath string) *distributionHandler {
	return &distributionHandler{
		selector: selector,
		basePath: strings.TrimRight(participantBasePath, "/"),
	}
}

func (h *distributionHandler) redirectPath(formID string) string {
	return h.basePath + "/" + url.PathEscape(formID)
}

// distribute handles GET /distribute/:studyCode
func (h *distributionHandler) distribute(c *gin.Context) {
	form, serviceErr := h.selector.SelectFormForStudy(c.Request.Context(), c.Param("studyCode"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, h.redirectPath(form.ID))
}

// assign handles GET /studies/:studyCode/assignment
func (h *distributionHandler) assign(c *gin.Context) {
	form, serviceErr := h.selector.SelectFormForStudy(c.Request.Context(), c.Param("studyCode"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, AssignmentResponse{
		ConsentFormID: form.ID,
		RedirectPath:  h.redirectPath(form.ID),
	})
}
