package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker/internal/models"
	"tracker/internal/services"
)

type WatchlistHandler struct {
	service services.WatchlistService
	log     *zap.SugaredLogger
}

func NewWatchlistHandler(service services.WatchlistService, log *zap.SugaredLogger) *WatchlistHandler {
	return &WatchlistHandler{service: service, log: log}
}

type createWatchlistRequest struct {
	Title      string             `json:"title"`
	Type       models.MediaType   `json:"type"`
	Status     models.WatchStatus `json:"status"`
	Notes      string             `json:"notes"`
	Genre      []string           `json:"genre"`
	Year       *int               `json:"year"`
	Rating     *float64           `json:"rating"`
	PosterURL  string             `json:"poster_url"`
	TrailerURL string             `json:"trailer_url"`
}

type updateWatchlistRequest struct {
	Title      *string             `json:"title"`
	Type       *models.MediaType   `json:"type"`
	Status     *models.WatchStatus `json:"status"`
	Notes      *string             `json:"notes"`
	Genre      *[]string           `json:"genre"`
	Year       *int                `json:"year"`
	Rating     *float64            `json:"rating"`
	PosterURL  *string             `json:"poster_url"`
	TrailerURL *string             `json:"trailer_url"`
}

// GET /watchlist
func (h *WatchlistHandler) List(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "[watchlist][list]", err, "Item not found")
		return
	}
	c.JSON(http.StatusOK, items)
}

// POST /watchlist
func (h *WatchlistHandler) Create(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	var req createWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "[watchlist][create]", err)
		return
	}
	item := &models.WatchlistItem{
		Title:      req.Title,
		Type:       req.Type,
		Status:     req.Status,
		Notes:      req.Notes,
		Genre:      req.Genre,
		Year:       req.Year,
		Rating:     req.Rating,
		PosterURL:  req.PosterURL,
		TrailerURL: req.TrailerURL,
	}
	created, err := h.service.Create(c.Request.Context(), uid, item)
	if err != nil {
		respondError(c, h.log, "[watchlist][create]", err, "Item not found")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /watchlist/:id
func (h *WatchlistHandler) Get(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "[watchlist][get]", err, "Item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

// PATCH /watchlist/:id
func (h *WatchlistHandler) Update(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	var req updateWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "[watchlist][update]", err)
		return
	}
	patch := models.WatchlistPatch{
		Title:      req.Title,
		Type:       req.Type,
		Status:     req.Status,
		Notes:      req.Notes,
		Genre:      req.Genre,
		Year:       req.Year,
		Rating:     req.Rating,
		PosterURL:  req.PosterURL,
		TrailerURL: req.TrailerURL,
	}
	item, err := h.service.Update(c.Request.Context(), uid, c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, "[watchlist][update]", err, "Item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DELETE /watchlist/:id
func (h *WatchlistHandler) Delete(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, h.log, "[watchlist][delete]", err, "Item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}
