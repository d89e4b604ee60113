package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker/internal/services"
)

type ActivityHandler struct {
	service services.ActivityService
	log     *zap.SugaredLogger
}

func NewActivityHandler(service services.ActivityService, log *zap.SugaredLogger) *ActivityHandler {
	return &ActivityHandler{service: service, log: log}
}

// @Summary      История действий
// @Description  The 50 most recent activities, newest first
// @Tags         Activity
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Activity
// @Failure      401  {object}  map[string]string
// @Router       /history [get]
func (h *ActivityHandler) History(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	items, err := h.service.History(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "[history][list]", err, "not found")
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary      Аналитика за неделю
// @Tags         Activity
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.Analytics
// @Router       /analytics [get]
func (h *ActivityHandler) Analytics(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	out, err := h.service.Analytics(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "[analytics][get]", err, "not found")
		return
	}
	c.JSON(http.StatusOK, out)
}
