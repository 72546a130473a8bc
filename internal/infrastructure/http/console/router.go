// Package console wires the operator console's HTTP surface.
package console

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"autogest/internal/domain/auth"
	"autogest/internal/domain/guard"
	"autogest/internal/domain/rbac"
	"autogest/internal/domain/session"
	"autogest/internal/infrastructure/http/console/handlers"
	"autogest/internal/infrastructure/http/console/middleware"
	"autogest/internal/infrastructure/http/console/web"
	"autogest/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Store owns the single active session
	Store session.Store

	// Gateway performs login, logout and registration
	Gateway *auth.Gateway

	// Catalog serves page data, usually through the listing cache
	Catalog handlers.Catalog

	// Backend answers the connection test
	Backend handlers.BackendProbe

	// Logger for request logging
	Logger *logger.Logger

	// LoginPath is where unauthenticated navigations are sent
	LoginPath string

	// AppName and Version are reported by /health/backend
	AppName string
	Version string

	// Templates overrides the embedded page templates
	Templates *template.Template

	// Debug enables gin debug mode
	Debug bool
}

// sectionDescriptions are shown on protected sections without backend data.
var sectionDescriptions = map[string]string{
	rbac.RouteAlquileres:     "Gestión de alquileres activos y devoluciones.",
	rbac.RouteMantenimiento:  "Registro y seguimiento del mantenimiento de la flota.",
	rbac.RouteNotificaciones: "Centro de notificaciones.",
	rbac.RouteUsuarios:       "Administración de usuarios del sistema.",
	rbac.RouteReportes:       "Reportes de ocupación e ingresos.",
	rbac.RouteConfiguracion:  "Configuración general del sistema.",
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.Templates == nil {
		cfg.Templates = web.MustTemplates()
	}

	router := gin.New()
	router.SetHTMLTemplate(cfg.Templates)

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler(cfg.LoginPath))

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.Backend, cfg.AppName, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/backend", healthHandler.Backend)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	base := handlers.NewBaseHandler()

	public := router.Group("")
	public.Use(middleware.UserContext(cfg.Store))
	handlers.NewAuthHandler(base, cfg.Gateway).RegisterRoutes(public)

	registerPages(router, cfg, handlers.NewPageHandler(base, cfg.Catalog))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, rbac.RouteDashboard)
	})
	router.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, rbac.RouteDashboard)
	})

	return router
}

// registerPages mounts every console route behind its guard. The dashboard
// only needs a session; the other routes use the route table.
func registerPages(router *gin.Engine, cfg RouterConfig, pages *handlers.PageHandler) {
	protect := func(rule guard.Rule) gin.HandlerFunc {
		return middleware.Guard(cfg.Store, cfg.LoginPath, rule)
	}

	router.GET(rbac.RouteDashboard, protect(guard.Rule{}), pages.Dashboard)
	router.GET(rbac.RouteVehiculos, protect(guard.RuleFor(rbac.RouteVehiculos)), pages.Vehicles)
	router.GET(rbac.RouteReservas, protect(guard.RuleFor(rbac.RouteReservas)), pages.Reservations)

	for path, description := range sectionDescriptions {
		router.GET(path, protect(guard.RuleFor(path)), pages.Section(path, description))
	}
}
