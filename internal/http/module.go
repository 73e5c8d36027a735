// Package http holds the App definition and the contract modules implement
// to mount their routes.
package http

import "github.com/gin-gonic/gin"

// Module mounts a bounded context's routes.
type Module interface {
	Name() string
	RegisterRoutes(groups *RouterContext)
}

// RouterContext carries the route groups a module may mount on.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 without authentication.
	V1 *gin.RouterGroup
	// Protected requires a valid access token and a tenant claim.
	Protected *gin.RouterGroup
}
