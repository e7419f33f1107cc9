package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/service/records"
)

// RecordHandler serves list, get, create, update and soft delete for one
// resource. Responses wrap records under Singular or Plural.
type RecordHandler struct {
	svc      *records.Service
	res      records.Resource
	singular string
	plural   string
	logger   *zap.Logger
}

// NewRecordHandler builds the handler for res.
func NewRecordHandler(svc *records.Service, res records.Resource, singular, plural string, logger *zap.Logger) *RecordHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordHandler{svc: svc, res: res, singular: singular, plural: plural, logger: logger}
}

// Register mounts the handler's routes on the group.
func (h *RecordHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func queryParams(c *gin.Context) map[string]string {
	params := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

// List returns the records matching the query string filters.
func (h *RecordHandler) List(c *gin.Context) {
	docs, err := h.svc.List(c.Request.Context(), h.res, queryParams(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{h.plural: presentAll(docs)})
}

// Get returns one record.
func (h *RecordHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), h.res, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{h.singular: present(doc)})
}

// Create inserts a record from the JSON body.
func (h *RecordHandler) Create(c *gin.Context) {
	var body map[string]any
	if !bindJSON(c, &body) {
		return
	}
	doc, err := h.svc.Create(c.Request.Context(), h.res, body, nil)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  h.res.Name + " created successfully",
		h.singular: present(doc),
	})
}

// Update applies a partial JSON body.
func (h *RecordHandler) Update(c *gin.Context) {
	var body map[string]any
	if !bindJSON(c, &body) {
		return
	}
	doc, err := h.svc.Update(c.Request.Context(), h.res, c.Param("id"), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  h.res.Name + " updated successfully",
		h.singular: present(doc),
	})
}

// Delete soft deletes the record.
func (h *RecordHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), h.res, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.res.Name + " deactivated successfully"})
}
