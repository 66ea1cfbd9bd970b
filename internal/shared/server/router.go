package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/admission"
	"resume-insights/internal/analyses"
	"resume-insights/internal/extract"
	"resume-insights/internal/guests"
	"resume-insights/internal/health"
	"resume-insights/internal/history"
	"resume-insights/internal/shared/config"
	"resume-insights/internal/shared/metrics"
	"resume-insights/internal/shared/server/middleware"
	"resume-insights/internal/shared/server/respond"
)

// Deps are the wired components the router mounts.
type Deps struct {
	Gate     *admission.Gate
	Limiter  *middleware.RateLimiter
	Health   *health.Service
	Guests   *guests.Handler
	Analyses *analyses.Handler
	History  *history.Handler
	Extract  *extract.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if !cfg.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		st := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if st.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, st)
	})

	// Authenticated callers are rate limited by user id, so the limiter runs
	// after admission on the authed group.
	public := api.Group("", deps.Limiter.Limit())
	authed := api.Group("", deps.Gate.RequireAuth(), deps.Limiter.Limit())

	deps.Guests.RegisterRoutes(public)
	deps.Extract.RegisterRoutes(public)
	deps.Analyses.RegisterRoutes(public, authed)
	deps.History.RegisterRoutes(authed)
	registerMeRoutes(authed)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":7000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
