package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker/internal/middleware"
	"tracker/internal/models"
	"tracker/internal/services"
	"tracker/internal/timer"
)

// MockTaskService implements services.TaskService for testing
type MockTaskService struct {
	CreateFunc func(ctx context.Context, ownerID string, task *models.Task) (*models.Task, error)
	ListFunc   func(ctx context.Context, ownerID string) ([]models.Task, error)
	GetFunc    func(ctx context.Context, ownerID, id string) (*models.Task, error)
	UpdateFunc func(ctx context.Context, ownerID, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteFunc func(ctx context.Context, ownerID, id string) error
	TimerFunc  func(ctx context.Context, ownerID, id string, action timer.Action) (*models.Task, error)
}

func (m *MockTaskService) Create(ctx context.Context, ownerID string, task *models.Task) (*models.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, task)
	}
	return task, nil
}

func (m *MockTaskService) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID)
	}
	return []models.Task{}, nil
}

func (m *MockTaskService) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID, id)
	}
	return nil, services.ErrNotFound
}

func (m *MockTaskService) Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (*models.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ownerID, id, patch)
	}
	return nil, services.ErrNotFound
}

func (m *MockTaskService) Delete(ctx context.Context, ownerID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, id)
	}
	return nil
}

func (m *MockTaskService) Timer(ctx context.Context, ownerID, id string, action timer.Action) (*models.Task, error) {
	if m.TimerFunc != nil {
		return m.TimerFunc(ctx, ownerID, id, action)
	}
	return nil, services.ErrNotFound
}

// MockUserService implements services.UserService for testing
type MockUserService struct {
	PatchFunc  func(ctx context.Context, p models.ExportUser, patch models.PreferencesPatch) (models.Preferences, error)
	ExportFunc func(ctx context.Context, p models.ExportUser) (*models.Export, error)
}

func (m *MockUserService) GetPreferences(context.Context, string) (models.Preferences, error) {
	return models.DefaultPreferences(), nil
}

func (m *MockUserService) PatchPreferences(ctx context.Context, p models.ExportUser, patch models.PreferencesPatch) (models.Preferences, error) {
	return m.PatchFunc(ctx, p, patch)
}

func (m *MockUserService) Export(ctx context.Context, p models.ExportUser) (*models.Export, error) {
	return m.ExportFunc(ctx, p)
}

func (m *MockUserService) DeleteAccount(context.Context, string) error { return nil }

type stubRenderer struct{ err error }

func (s stubRenderer) RenderExport(w io.Writer, _ *models.Export) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, "%PDF-1.3 stub")
	return err
}

// withOwner stands in for AuthMiddleware.
func withOwner(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set(middleware.CtxUserID, id)
			c.Set(middleware.CtxUserName, "Ada")
		}
		c.Next()
	}
}

func setupTaskRouter(svc services.TaskService, owner string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTaskHandler(svc, zap.NewNop().Sugar())
	g := r.Group("/", withOwner(owner))
	g.GET("/tasks", h.List)
	g.POST("/tasks", h.Create)
	g.GET("/tasks/:id", h.Get)
	g.PATCH("/tasks/:id", h.Update)
	g.DELETE("/tasks/:id", h.Delete)
	g.POST("/tasks/:id/timer/:action", h.Timer)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		wantMsg string
	}{
		{"validation", fmt.Errorf("%w: title is required", services.ErrValidation), http.StatusBadRequest, "validation failed: title is required"},
		{"not found", services.ErrNotFound, http.StatusNotFound, "Task not found"},
		{"conflict", fmt.Errorf("%w: timer was modified concurrently", services.ErrConflict), http.StatusConflict, "conflict: timer was modified concurrently"},
		{"storage", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTaskService{GetFunc: func(context.Context, string, string) (*models.Task, error) {
				return nil, tt.err
			}}
			w := do(setupTaskRouter(svc, "u1"), http.MethodGet, "/tasks/t1", "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if msg := decodeError(t, w); msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestMissingOwnerIsUnauthorized(t *testing.T) {
	called := false
	svc := &MockTaskService{ListFunc: func(context.Context, string) ([]models.Task, error) {
		called = true
		return nil, nil
	}}
	w := do(setupTaskRouter(svc, ""), http.MethodGet, "/tasks", "")
	if w.Code != http.StatusUnauthorized || called {
		t.Errorf("status = %d, service called = %v", w.Code, called)
	}
}

func TestCreateTaskBinding(t *testing.T) {
	var got *models.Task
	var gotOwner string
	svc := &MockTaskService{CreateFunc: func(_ context.Context, owner string, task *models.Task) (*models.Task, error) {
		got, gotOwner = task, owner
		task.ID = "new"
		return task, nil
	}}
	r := setupTaskRouter(svc, "u1")

	body := `{"title":"Plan","priority":"high","due_date":"2024-03-01T10:00:00+02:00",
		"tags":["a"],"recurring":{"is_recurring":true,"frequency":"weekly"},"duration_minutes":30}`
	w := do(r, http.MethodPost, "/tasks", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if gotOwner != "u1" || got.Title != "Plan" || got.Priority != models.PriorityHigh {
		t.Errorf("task = %+v owner=%s", got, gotOwner)
	}
	wantDue := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	if got.DueDate == nil || !got.DueDate.Equal(wantDue) {
		t.Errorf("due = %v, want %v", got.DueDate, wantDue)
	}
	if !got.Recurring.Active() || got.Recurring.Frequency != models.FrequencyWeekly || *got.DurationMinutes != 30 {
		t.Errorf("recurring/duration = %+v/%v", got.Recurring, got.DurationMinutes)
	}

	for _, bad := range []string{`{"title":`, `{"title":"x","due_date":"tomorrow"}`, `{"title":"x","due_date":5}`} {
		if w := do(r, http.MethodPost, "/tasks", bad); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", bad, w.Code)
		}
	}
}

func TestUpdateTaskPatchSemantics(t *testing.T) {
	var patch models.TaskPatch
	svc := &MockTaskService{UpdateFunc: func(_ context.Context, _, id string, p models.TaskPatch) (*models.Task, error) {
		patch = p
		return &models.Task{ID: id}, nil
	}}
	r := setupTaskRouter(svc, "u1")

	tests := []struct {
		name  string
		body  string
		check func(models.TaskPatch) bool
	}{
		{"absent fields stay nil", `{"title":"x"}`, func(p models.TaskPatch) bool {
			return p.Title != nil && *p.Title == "x" && p.Status == nil && p.DueDate == nil && !p.ClearDueDate
		}},
		{"null due date clears", `{"due_date":null}`, func(p models.TaskPatch) bool {
			return p.ClearDueDate && p.DueDate == nil
		}},
		{"empty due date clears", `{"due_date":""}`, func(p models.TaskPatch) bool {
			return p.ClearDueDate
		}},
		{"due date set", `{"due_date":"2024-05-01T00:00:00Z"}`, func(p models.TaskPatch) bool {
			return !p.ClearDueDate && p.DueDate != nil && p.DueDate.Day() == 1
		}},
		{"timer fields ignored", `{"timer_status":"running","accumulated_time":999}`, func(p models.TaskPatch) bool {
			return p == (models.TaskPatch{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch = models.TaskPatch{}
			w := do(r, http.MethodPatch, "/tasks/t1", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			if !tt.check(patch) {
				t.Errorf("patch = %+v", patch)
			}
		})
	}
}

func TestTimerAction(t *testing.T) {
	var got timer.Action
	svc := &MockTaskService{TimerFunc: func(_ context.Context, _, id string, a timer.Action) (*models.Task, error) {
		got = a
		return &models.Task{ID: id, TimerStatus: models.TimerRunning}, nil
	}}
	r := setupTaskRouter(svc, "u1")

	if w := do(r, http.MethodPost, "/tasks/t1/timer/toggle", ""); w.Code != http.StatusOK || got != timer.ActionToggle {
		t.Errorf("toggle: status=%d action=%q", w.Code, got)
	}
	if w := do(r, http.MethodPost, "/tasks/t1/timer/rewind", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown action: status = %d, want 400", w.Code)
	}
}

func TestDeleteTaskMessage(t *testing.T) {
	w := do(setupTaskRouter(&MockTaskService{}, "u1"), http.MethodDelete, "/tasks/t1", "")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("Task deleted")) {
		t.Errorf("delete = %d %s", w.Code, w.Body.String())
	}
}

func setupUserRouter(svc services.UserService, renderer stubRenderer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewUserHandler(svc, renderer, zap.NewNop().Sugar())
	g := r.Group("/user", withOwner("u1"))
	g.PATCH("/preferences", h.PatchPreferences)
	g.GET("/export", h.Export)
	return r
}

func TestPatchPreferencesBodyShapes(t *testing.T) {
	var got models.PreferencesPatch
	var who models.ExportUser
	svc := &MockUserService{PatchFunc: func(_ context.Context, p models.ExportUser, patch models.PreferencesPatch) (models.Preferences, error) {
		got, who = patch, p
		return patch.Apply(models.DefaultPreferences()), nil
	}}
	r := setupUserRouter(svc, stubRenderer{})

	for _, body := range []string{`{"preferences":{"theme":"dark"}}`, `{"theme":"dark"}`} {
		got = models.PreferencesPatch{}
		w := do(r, http.MethodPatch, "/user/preferences", body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", body, w.Code)
		}
		if got.Theme == nil || *got.Theme != models.ThemeDark || got.CompactView != nil {
			t.Errorf("%s: patch = %+v", body, got)
		}
	}
	if who.ID != "u1" || who.Name != "Ada" {
		t.Errorf("profile = %+v", who)
	}
}

func TestExportFormats(t *testing.T) {
	exp := &models.Export{ExportDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), User: models.ExportUser{ID: "u1"}}
	svc := &MockUserService{ExportFunc: func(context.Context, models.ExportUser) (*models.Export, error) {
		return exp, nil
	}}

	r := setupUserRouter(svc, stubRenderer{})
	w := do(r, http.MethodGet, "/user/export", "")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"export_date"`)) {
		t.Errorf("json export = %d %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="tracker-export-2024-03-01.json"` {
		t.Errorf("content-disposition = %q", cd)
	}

	w = do(r, http.MethodGet, "/user/export?format=pdf", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("pdf export = %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	if w := do(r, http.MethodGet, "/user/export?format=xml", ""); w.Code != http.StatusBadRequest {
		t.Errorf("xml export = %d, want 400", w.Code)
	}

	r = setupUserRouter(svc, stubRenderer{err: errors.New("font missing")})
	if w := do(r, http.MethodGet, "/user/export?format=pdf", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("failing renderer = %d, want 500", w.Code)
	}
}
