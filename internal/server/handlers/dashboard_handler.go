package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/service/alerts"
	"github.com/mamadbah2/fleetbook/internal/service/export"
)

// AnalyticsProvider computes dashboard analytics.
type AnalyticsProvider interface {
	Report(ctx context.Context, q models.AnalyticsQuery) (models.AnalyticsReport, error)
	Filters(ctx context.Context) (models.DashboardFilters, error)
}

// AlertProvider refreshes and lists active alerts.
type AlertProvider interface {
	Current(ctx context.Context, limit int) ([]models.Alert, error)
}

// DashboardHandler serves the dashboard endpoints.
type DashboardHandler struct {
	analytics AnalyticsProvider
	alerts    AlertProvider
	maxDays   int
	logger    *zap.Logger
	now       func() time.Time
}

// NewDashboardHandler builds the dashboard handler. maxDays caps the
// analytics window a caller may ask for.
func NewDashboardHandler(analytics AnalyticsProvider, alertProvider AlertProvider, maxDays int, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{analytics: analytics, alerts: alertProvider, maxDays: maxDays, logger: logger, now: time.Now}
}

// WithClock overrides the clock used to date exported files.
func (h *DashboardHandler) WithClock(now func() time.Time) *DashboardHandler {
	h.now = now
	return h
}

// Register mounts the dashboard routes.
func (h *DashboardHandler) Register(g *gin.RouterGroup) {
	g.GET("/filters", h.Filters)
	g.GET("/alerts", h.Alerts)
	g.GET("/analytics", h.Analytics)
	g.GET("/analytics/export", h.Export)
}

// Filters lists the options the dashboard filters offer.
func (h *DashboardHandler) Filters(c *gin.Context) {
	filters, err := h.analytics.Filters(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": filters})
}

// Alerts re-evaluates the expiry rules and returns the newest active alerts.
func (h *DashboardHandler) Alerts(c *gin.Context) {
	active, err := h.alerts.Current(c.Request.Context(), alerts.DefaultListLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": active})
}

// Analytics returns the analytics payload for the requested window.
func (h *DashboardHandler) Analytics(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": report})
}

// Export returns the analytics payload as an xlsx workbook.
func (h *DashboardHandler) Export(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	data, err := export.Workbook(report)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	name := fmt.Sprintf("fleet-analytics-%s.xlsx", h.now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, export.ContentType, data)
}

func (h *DashboardHandler) report(c *gin.Context) (models.AnalyticsReport, bool) {
	q := models.AnalyticsQuery{
		TruckID:  strings.TrimSpace(c.Query("truck_id")),
		DriverID: strings.TrimSpace(c.Query("driver_id")),
		Region:   strings.TrimSpace(c.Query("region")),
	}
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return models.AnalyticsReport{}, false
		}
		if h.maxDays > 0 && days > h.maxDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("days must not exceed %d", h.maxDays)})
			return models.AnalyticsReport{}, false
		}
		q.Days = days
	}

	report, err := h.analytics.Report(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return models.AnalyticsReport{}, false
	}
	return report, true
}
