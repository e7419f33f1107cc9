package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/service/records"
)

// TruckHandler adds the view counter to the truck record routes.
type TruckHandler struct {
	*RecordHandler
	fleet *records.Fleet
}

// NewTruckHandler builds the truck handler.
func NewTruckHandler(fleet *records.Fleet, logger *zap.Logger) *TruckHandler {
	return &TruckHandler{
		RecordHandler: NewRecordHandler(fleet.Service, records.Trucks, "truck", "trucks", logger),
		fleet:         fleet,
	}
}

// Register mounts the truck routes.
func (h *TruckHandler) Register(g *gin.RouterGroup) {
	h.RecordHandler.Register(g)
	g.POST("/:id/view", h.RecordView)
}

// RecordView increments the truck's view counter.
func (h *TruckHandler) RecordView(c *gin.Context) {
	views, err := h.fleet.RecordView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}
