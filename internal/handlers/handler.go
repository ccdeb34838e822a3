package handlers

import (
	"time"

	"gym_timer/internal/logger"
	"gym_timer/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	resyncInterval time.Duration
}

// Option customizes a Handler.
type Option func(*Handler)

// WithResyncInterval sets the default period of full state frames on the
// WebSocket stream. Clients may override it per connection.
func WithResyncInterval(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 && d <= maxInterval {
			h.resyncInterval = d
		}
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log, resyncInterval: defaultInterval}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// event stream; authenticates with ?token= or the Authorization header
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerTimerRoutes(api)
		h.registerAlarmRoutes(api)
		h.registerSetRoutes(api)
		api.GET("/logs", h.getLogs)
	}
}

func (h *Handler) registerTimerRoutes(api *gin.RouterGroup) {
	timer := api.Group("/timer")
	{
		// Body: {"seconds":90}
		timer.POST("/start", h.startTimer)
		timer.POST("/pause", h.pauseTimer)
		timer.POST("/resume", h.resumeTimer)
		timer.POST("/toggle", h.toggleTimer)
		// Body: {"seconds":10}; omitted seconds use the preset step
		timer.POST("/add", h.addTime)
		timer.POST("/reset", h.resetTimer)
		timer.GET("/state", h.getState)
		timer.GET("/presets", h.getPresets)
	}
}

func (h *Handler) registerAlarmRoutes(api *gin.RouterGroup) {
	api.POST("/alarm/dismiss", h.dismissAlarm)
}

func (h *Handler) registerSetRoutes(api *gin.RouterGroup) {
	// Body: {"set":3}
	api.POST("/sets/select", h.selectSet)
}
