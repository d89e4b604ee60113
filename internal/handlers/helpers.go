package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker/internal/middleware"
	"tracker/internal/models"
	"tracker/internal/services"
)

// ownerID reads the user set by AuthMiddleware. Routes mounted without it
// answer 401 instead of acting on an empty owner.
func ownerID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.CtxUserID)
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return id, true
}

func profile(c *gin.Context, id string) models.ExportUser {
	return models.ExportUser{
		ID:    id,
		Name:  c.GetString(middleware.CtxUserName),
		Email: c.GetString(middleware.CtxUserEmail),
	}
}

// respondError maps service errors onto status codes. Anything unknown is
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, log *zap.SugaredLogger, tag string, err error, notFound string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		log.Infow(tag+"[400]", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		log.Infow(tag+"[404]", "id", c.Param("id"))
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, services.ErrConflict):
		log.Warnw(tag+"[409]", "id", c.Param("id"), "err", err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Errorw(tag+"[err]", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, log *zap.SugaredLogger, tag string, err error) {
	log.Infow(tag+"[bind][err]", "err", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// optionalTime distinguishes an absent field from an explicit null or "".
// Set is true when the key was present; Value is nil when it was cleared.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("date must be an RFC3339 string")
	}
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return errors.New("date must be an RFC3339 string")
	}
	t = t.UTC()
	o.Value = &t
	return nil
}

// cleared reports a present-but-empty value.
func (o optionalTime) cleared() bool {
	return o.Set && o.Value == nil
}
