package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/server/handlers"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Dashboard      *handlers.DashboardHandler
	Trips          *handlers.TripHandler
	Trucks         *handlers.TruckHandler
	Employees      *handlers.RecordHandler
	Expenses       *handlers.RecordHandler
	ClientPayments *handlers.RecordHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handlers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	h.Dashboard.Register(r.Group("/dashboard"))
	h.Trips.Register(r.Group("/trips"))
	h.Trucks.Register(r.Group("/trucks"))
	h.Employees.Register(r.Group("/employees"))
	h.Expenses.Register(r.Group("/expenses"))
	h.ClientPayments.Register(r.Group("/client-payments"))
	r.GET("/subtrips", h.Trips.SubTripsByClient)
	r.GET("/client-names", h.Trips.ClientNames)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// requestIDMiddleware propagates the caller's request id or assigns one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)))
	}
}
