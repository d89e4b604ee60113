package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker/internal/models"
	"tracker/internal/pdf"
	"tracker/internal/services"
)

type UserHandler struct {
	service services.UserService
	pdf     pdf.Renderer
	log     *zap.SugaredLogger
}

func NewUserHandler(service services.UserService, renderer pdf.Renderer, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{service: service, pdf: renderer, log: log}
}

// Accepts both {"preferences": {...}} and the bare fields.
type preferencesRequest struct {
	Preferences *models.PreferencesPatch `json:"preferences"`
	models.PreferencesPatch
}

// GET /user/preferences
func (h *UserHandler) GetPreferences(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	prefs, err := h.service.GetPreferences(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "[user][preferences][get]", err, "User not found")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// @Summary      Обновить настройки
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        preferences  body      models.PreferencesPatch  true  "Fields to change"
// @Success      200          {object}  models.Preferences
// @Failure      400          {object}  map[string]string
// @Router       /user/preferences [patch]
func (h *UserHandler) PatchPreferences(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "[user][preferences]", err)
		return
	}
	patch := req.PreferencesPatch
	if req.Preferences != nil {
		patch = *req.Preferences
	}
	prefs, err := h.service.PatchPreferences(c.Request.Context(), profile(c, uid), patch)
	if err != nil {
		respondError(c, h.log, "[user][preferences]", err, "User not found")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// @Summary      Экспорт данных
// @Description  Full dump of the account. format=pdf returns a printable report instead of JSON.
// @Tags         User
// @Produce      json
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        format  query     string  false  "json (default) or pdf"
// @Success      200     {object}  models.Export
// @Router       /user/export [get]
func (h *UserHandler) Export(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or pdf"})
		return
	}

	exp, err := h.service.Export(c.Request.Context(), profile(c, uid))
	if err != nil {
		respondError(c, h.log, "[user][export]", err, "User not found")
		return
	}
	name := "tracker-export-" + exp.ExportDate.Format("2006-01-02")

	if format == "pdf" {
		var buf bytes.Buffer
		if err := h.pdf.RenderExport(&buf, exp); err != nil {
			h.log.Errorw("[user][export][pdf][err]", "user_id", uid, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, name))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, name))
	c.JSON(http.StatusOK, exp)
}

// DELETE /user/delete
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), uid); err != nil {
		respondError(c, h.log, "[user][delete]", err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account and data deleted successfully"})
}
