package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/parse"
	"github.com/mamadbah2/fleetbook/internal/repository"
	"github.com/mamadbah2/fleetbook/internal/service/records"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags and reports fields by
// their JSON name. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, ok := parse.ISODate(fl.Field().String())
			return ok
		})
	})
}

// bindJSON decodes the body into dst and writes a 400 when it is unusable.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return false
	}
	return true
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return "Missing required field: " + fe.Field()
		}
		return "Invalid value for field: " + fe.Field()
	}
	return "Invalid request body"
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *records.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case repository.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// present renders a stored document for the API, exposing its id as "id".
func present(doc repository.Document) gin.H {
	out := make(gin.H, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case repository.Document:
			out[k] = present(t)
		case []repository.Document:
			out[k] = presentAll(t)
		default:
			out[k] = v
		}
	}
	if id, ok := out[models.FieldID]; ok {
		delete(out, models.FieldID)
		out["id"] = id
	}
	return out
}

func presentAll(docs []repository.Document) []gin.H {
	out := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		out = append(out, present(d))
	}
	return out
}
