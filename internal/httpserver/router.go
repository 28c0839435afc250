// Package httpserver wires the Gin router fronting the WebSocket edge
// and the thin HTTP authentication surface (login/signup/logout) that
// sets the id/sess cookies the edge's auth guard reads.
package httpserver

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/db"
	"github.com/streamspace-dev/chatcore/internal/friendship"
	"github.com/streamspace-dev/chatcore/internal/hub"
	"github.com/streamspace-dev/chatcore/internal/middleware"
	"github.com/streamspace-dev/chatcore/internal/session"
	"github.com/streamspace-dev/chatcore/internal/store"
	"github.com/streamspace-dev/chatcore/internal/wsedge"
)

// Deps bundles everything the router needs to construct its handlers.
type Deps struct {
	Hub         *hub.Hub
	Store       *store.Store
	Friendships *friendship.Machine
	Sessions    *session.Registry
	Database    *db.Database
}

// New builds the configured Gin engine: ambient middleware, the /ws
// upgrade endpoint, health/readiness probes, and the auth handlers.
func New(deps Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(apperr.Recovery())
	router.Use(middleware.StructuredLogger())
	timeoutConfig := middleware.DefaultTimeoutConfig()
	timeoutConfig.Timeout = 10 * time.Second
	timeoutConfig.ExcludedPaths = []string{"/ws"}
	router.Use(middleware.Timeout(timeoutConfig))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimiter(1 << 20))
	router.Use(middleware.GzipWithExclusions(5, []string{"/ws"}))
	router.Use(apperr.ErrorHandler())

	edge := wsedge.New(deps.Hub, deps.Store, deps.Friendships, deps.Sessions)
	router.GET("/ws", edge.ServeHTTP)

	router.GET("/healthz", func(c *gin.Context) { c.Status(200) })
	router.GET("/readyz", func(c *gin.Context) {
		if err := deps.Database.Ping(); err != nil {
			apperr.AbortWithError(c, apperr.InternalServer("database not ready"))
			return
		}
		c.Status(200)
	})

	auth := &authHandlers{store: deps.Store, sessions: deps.Sessions}
	router.POST("/api/signup", auth.signup)
	router.POST("/api/login", auth.login)
	router.POST("/api/logout", auth.logout)

	return router
}

// cookieMaxAge is effectively "permanent": 1 year, matching the spec's
// "permanent" id/sess cookie lifetime.
const cookieMaxAge = int(365 * 24 * time.Hour / time.Second)
