package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/utils"
)

// BasicAuthMiddleware guards researcher routes with the users configured under security.basic_auth.
// It is a no-op when basic auth is disabled.
func BasicAuthMiddleware(sec config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sec.IsBasicAuthEnabled() {
			c.Next()
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok || !sec.ValidateUser(username, password) {
			c.Header("WWW-Authenticate", `Basic realm="consent-forms"`)
			c.AbortWithStatusJSON(401, gin.H{
				"error":             "unauthorized",
				"error_description": "valid researcher credentials are required",
			})
			return
		}
		c.Set("researcher", username)
		c.Next()
	}
}

// RequireJSON rejects write requests whose body is not JSON
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength != 0 && c.ContentType() != "application/json" {
			utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "content type must be application/json"))
			return
		}
		c.Next()
	}
}
