package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/system/constants"
	"github.com/wso2/informed-consent-api/internal/system/error/apierror"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/log"
)

// StatusCodeFor maps a ServiceError to its HTTP status code
func StatusCodeFor(err *serviceerror.ServiceError) int {
	if err.Type != serviceerror.ClientErrorType {
		return http.StatusInternalServerError
	}
	switch {
	case err.IsNotFound():
		return http.StatusNotFound
	case err.IsConflict():
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// SendError writes a ServiceError as an HTTP response with appropriate status code.
// Server errors are logged and replaced with a generic message.
func SendError(c *gin.Context, err *serviceerror.ServiceError) {
	statusCode := StatusCodeFor(err)

	errorResponse := apierror.NewErrorResponse(err.Error, err.ErrorDescription)

	if statusCode == http.StatusInternalServerError {
		log.GetLogger().WithContext(c.Request.Context()).Error("Request failed",
			log.String("code", err.Code),
			log.String("error", err.ErrorDescription),
			log.String("path", c.FullPath()),
		)
		errorResponse.Description = constants.GenericErrorMessage
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

// SendBindError reports a request body that failed to decode or validate
func SendBindError(c *gin.Context, err error) {
	SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, DescribeValidationError(err)))
}
