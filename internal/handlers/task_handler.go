package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker/internal/models"
	"tracker/internal/services"
	"tracker/internal/timer"
)

type TaskHandler struct {
	service services.TaskService
	log     *zap.SugaredLogger
}

func NewTaskHandler(service services.TaskService, log *zap.SugaredLogger) *TaskHandler {
	return &TaskHandler{service: service, log: log}
}

type createTaskRequest struct {
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Priority        models.Priority    `json:"priority"`
	Status          models.TaskStatus  `json:"status"`
	DueDate         optionalTime       `json:"due_date"`
	Pinned          bool               `json:"pinned"`
	Tags            []string           `json:"tags"`
	Recurring       *models.Recurrence `json:"recurring"`
	DurationMinutes *int               `json:"duration_minutes"`
}

// No timer fields: those only change through POST /tasks/:id/timer/:action.
type updateTaskRequest struct {
	Title           *string            `json:"title"`
	Description     *string            `json:"description"`
	Priority        *models.Priority   `json:"priority"`
	Status          *models.TaskStatus `json:"status"`
	DueDate         optionalTime       `json:"due_date"`
	Pinned          *bool              `json:"pinned"`
	Tags            *[]string          `json:"tags"`
	Recurring       *models.Recurrence `json:"recurring"`
	DurationMinutes *int               `json:"duration_minutes"`
}

// @Summary      Список задач
// @Description  Pinned tasks first, then newest first
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Task
// @Failure      401  {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	tasks, err := h.service.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "[task][list]", err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Создать задачу
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body      createTaskRequest  true  "Task"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "[task][create]", err)
		return
	}
	task := &models.Task{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		Status:          req.Status,
		DueDate:         req.DueDate.Value,
		Pinned:          req.Pinned,
		Tags:            req.Tags,
		DurationMinutes: req.DurationMinutes,
	}
	if req.Recurring != nil {
		task.Recurring = *req.Recurring
	}

	created, err := h.service.Create(c.Request.Context(), uid, task)
	if err != nil {
		respondError(c, h.log, "[task][create]", err, "Task not found")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "[task][get]", err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Обновить задачу
// @Description  Partial update. Completing a recurring task schedules the next occurrence.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        task  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "[task][update]", err)
		return
	}
	patch := models.TaskPatch{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		Status:          req.Status,
		DueDate:         req.DueDate.Value,
		ClearDueDate:    req.DueDate.cleared(),
		Pinned:          req.Pinned,
		Tags:            req.Tags,
		Recurring:       req.Recurring,
		DurationMinutes: req.DurationMinutes,
	}

	task, err := h.service.Update(c.Request.Context(), uid, c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, "[task][update]", err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, h.log, "[task][delete]", err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// @Summary      Управление таймером
// @Description  action: start | pause | toggle | stop | reset
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Task ID"
// @Param        action  path      string  true  "Timer action"
// @Success      200     {object}  models.Task
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /tasks/{id}/timer/{action} [post]
func (h *TaskHandler) Timer(c *gin.Context) {
	uid, ok := ownerID(c)
	if !ok {
		return
	}
	action, err := timer.ParseAction(c.Param("action"))
	if err != nil {
		badRequest(c, h.log, "[task][timer]", err)
		return
	}
	task, err := h.service.Timer(c.Request.Context(), uid, c.Param("id"), action)
	if err != nil {
		respondError(c, h.log, "[task][timer]", err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}
