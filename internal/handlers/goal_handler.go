package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker/internal/models"
	"tracker/internal/services"
)

type GoalHandler struct {
	service services.GoalService
	log     *zap.SugaredLogger
}

func NewGoalHandler(service services.GoalService, log *zap.SugaredLogger) *GoalHandler {
	return &GoalHandler{service: service, log: log}
}

type createGoalRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Emoji       string            `json:"emoji"`
	Deadline    optionalTime      `json:"deadline"`
	Priority    models.Priority   `json:"priority"`
	Status      models.GoalStatus `json:"status"`
	Subtasks    []models.Subtask  `json:"subtasks"`
	Streak      int               `json:"streak"`
}

type updateGoalRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Emoji       *string            `json:"emoji"`
	Deadline    optionalTime       `json:"deadline"`
	Priority    *models.Priority   `json:"priority"`
	Status      *models.GoalStatus `json:"status"`
	Subtasks    *[]models.Subtask  `json:"subtasks"`
	Streak      *int               `json:"streak"`
}

// GET /goals
func (h *GoalHandler) List(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	goals, err := h.service.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "[goal][list]", err, "Goal not found")
		return
	}
	c.JSON(http.StatusOK, goals)
}

// @Summary      Создать цель
// @Tags         Goals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        goal  body      createGoalRequest  true  "Goal"
// @Success      201   {object}  models.Goal
// @Failure      400   {object}  map[string]string
// @Router       /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "[goal][create]", err)
		return
	}
	goal := &models.Goal{
		Title:       req.Title,
		Description: req.Description,
		Emoji:       req.Emoji,
		Deadline:    req.Deadline.Value,
		Priority:    req.Priority,
		Status:      req.Status,
		Subtasks:    req.Subtasks,
		Streak:      req.Streak,
	}
	created, err := h.service.Create(c.Request.Context(), uid, goal)
	if err != nil {
		respondError(c, h.log, "[goal][create]", err, "Goal not found")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /goals/:id
func (h *GoalHandler) Get(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	goal, err := h.service.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "[goal][get]", err, "Goal not found")
		return
	}
	c.JSON(http.StatusOK, goal)
}

// @Summary      Обновить цель
// @Description  Partial update. just_completed is true on the save that first brings progress to 100%.
// @Tags         Goals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Goal ID"
// @Param        goal  body      updateGoalRequest  true  "Fields to change"
// @Success      200   {object}  services.GoalResult
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /goals/{id} [patch]
func (h *GoalHandler) Update(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "[goal][update]", err)
		return
	}
	patch := models.GoalPatch{
		Title:         req.Title,
		Description:   req.Description,
		Emoji:         req.Emoji,
		Deadline:      req.Deadline.Value,
		ClearDeadline: req.Deadline.cleared(),
		Priority:      req.Priority,
		Status:        req.Status,
		Subtasks:      req.Subtasks,
		Streak:        req.Streak,
	}
	res, err := h.service.Update(c.Request.Context(), uid, c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, "[goal][update]", err, "Goal not found")
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /goals/:id/subtasks/:index/toggle
func (h *GoalHandler) ToggleSubtask(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.log.Infow("[goal][toggle][err] invalid index", "index", c.Param("index"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subtask index"})
		return
	}
	res, err := h.service.ToggleSubtask(c.Request.Context(), uid, c.Param("id"), index)
	if err != nil {
		respondError(c, h.log, "[goal][toggle]", err, "Goal not found")
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /goals/:id
func (h *GoalHandler) Delete(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, h.log, "[goal][delete]", err, "Goal not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}
