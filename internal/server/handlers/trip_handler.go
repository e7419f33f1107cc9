package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/service/records"
)

// createSubTripRequest is the body of POST /trips/:id/subtrips. Amounts may
// arrive as JSON numbers or numeric strings.
type createSubTripRequest struct {
	Date        string      `json:"date" binding:"required,isodate"`
	EndDate     string      `json:"end_date" binding:"required,isodate"`
	Origin      string      `json:"origin" binding:"required"`
	Destination string      `json:"destination" binding:"required"`
	ClientName  string      `json:"client_name" binding:"required"`
	CargoWeight json.Number `json:"cargo_weight" binding:"required"`
	Cost        json.Number `json:"cost" binding:"required"`
}

func (r createSubTripRequest) body() map[string]any {
	return map[string]any{
		"date":                 r.Date,
		"end_date":             r.EndDate,
		"origin":               r.Origin,
		"destination":          r.Destination,
		models.FieldClientName: r.ClientName,
		"cargo_weight":         r.CargoWeight.String(),
		models.FieldCost:       r.Cost.String(),
	}
}

// TripHandler serves trips, their sub-trips and the client lookups.
type TripHandler struct {
	*RecordHandler
	fleet *records.Fleet
}

// NewTripHandler builds the trip handler.
func NewTripHandler(fleet *records.Fleet, logger *zap.Logger) *TripHandler {
	return &TripHandler{
		RecordHandler: NewRecordHandler(fleet.Service, records.Trips, "trip", "trips", logger),
		fleet:         fleet,
	}
}

// Register mounts the trip and sub-trip routes.
func (h *TripHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	g.GET("/:id/subtrips", h.ListSubTrips)
	g.POST("/:id/subtrips", h.CreateSubTrip)
	g.PUT("/:id/subtrips/:subtripID", h.UpdateSubTrip)
	g.DELETE("/:id/subtrips/:subtripID", h.DeleteSubTrip)
}

// List returns trips with truck_number and driver_name resolved.
func (h *TripHandler) List(c *gin.Context) {
	trips, err := h.fleet.ListTrips(c.Request.Context(), queryParams(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": presentAll(trips)})
}

// Get returns a trip with its sub-trips.
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.fleet.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": present(trip)})
}

// ListSubTrips returns the sub-trips of a trip.
func (h *TripHandler) ListSubTrips(c *gin.Context) {
	subtrips, err := h.fleet.ListSubTrips(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtrips": presentAll(subtrips)})
}

// CreateSubTrip adds a sub-trip and reconciles the trip revenue.
func (h *TripHandler) CreateSubTrip(c *gin.Context) {
	var req createSubTripRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.fleet.CreateSubTrip(c.Request.Context(), c.Param("id"), req.body())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sub Trip added", "subtrip": present(sub)})
}

// UpdateSubTrip applies a partial update to a sub-trip of the trip.
func (h *TripHandler) UpdateSubTrip(c *gin.Context) {
	var body map[string]any
	if !bindJSON(c, &body) {
		return
	}
	sub, err := h.fleet.UpdateSubTrip(c.Request.Context(), c.Param("id"), c.Param("subtripID"), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sub Trip updated", "subtrip": present(sub)})
}

// DeleteSubTrip removes a sub-trip of the trip.
func (h *TripHandler) DeleteSubTrip(c *gin.Context) {
	if err := h.fleet.DeleteSubTrip(c.Request.Context(), c.Param("id"), c.Param("subtripID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sub Trip deleted"})
}

// SubTripsByClient serves GET /subtrips?client_name=.
func (h *TripHandler) SubTripsByClient(c *gin.Context) {
	subtrips, err := h.fleet.SubTripsByClient(c.Request.Context(), c.Query(models.FieldClientName))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtrips": presentAll(subtrips)})
}

// ClientNames serves GET /client-names.
func (h *TripHandler) ClientNames(c *gin.Context) {
	names, err := h.fleet.ClientNames(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_names": names})
}
