package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the caller as established by AuthRequired.
type Identity struct {
	UserID uuid.UUID
	// TenantID is nil when the token carried no tenant claim.
	TenantID *uuid.UUID
}

// GetIdentity reads the identity AuthRequired stored on c.
func GetIdentity(c *gin.Context) (Identity, bool) {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return Identity{}, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		return Identity{}, false
	}

	id := Identity{UserID: userID}
	if raw, ok := c.Get(ContextTenantIDKey); ok {
		if tid, ok := raw.(uuid.UUID); ok {
			id.TenantID = &tid
		}
	}
	return id, true
}

// MustGetTenantID returns the caller's tenant. It aborts with 401 when the
// request is unauthenticated and 403 when the token carries no tenant.
func MustGetTenantID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := GetIdentity(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	if id.TenantID == nil {
		Error(c, http.StatusForbidden, "tenant required", nil)
		return uuid.Nil, false
	}
	return *id.TenantID, true
}
