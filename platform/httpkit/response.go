package httpkit

import (
	"errors"
	"net/http"

	"property_portal_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const msgInternal = "internal server error"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error writes an ErrorResponse and aborts the handler chain.
func Error(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Details: details})
}

// HandleError writes the response for err and reports whether it did.
// Typed *apperr.Error values map by Kind. Server-side kinds and untyped errors
// are attached to the gin context for RequestLogger and answered with a
// generic message so driver or SDK text never reaches the client.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, msgInternal, nil)
		return true
	}

	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if domainErr.Kind == apperr.KindInternal || domainErr.Kind == apperr.KindUnknown {
			Error(c, status, msgInternal, nil)
			return true
		}
	}
	Error(c, status, domainErr.Message, domainErr.Details)
	return true
}
