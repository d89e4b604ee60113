package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker/internal/cache"
	"tracker/internal/clock"
	"tracker/internal/handlers"
	"tracker/internal/models"
	"tracker/internal/pdf"
	"tracker/internal/repositories"
	"tracker/internal/routes"
	"tracker/internal/services"
	"tracker/internal/testutil"
	"tracker/internal/utils"
)

var secret = []byte("routes-test-secret")

type server struct {
	t      *testing.T
	router *gin.Engine
	clock  *clock.Manual
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	log := zap.NewNop().Sugar()
	clk := clock.NewManual(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	c := cache.Noop()

	taskRepo := repositories.NewTaskRepository(db)
	goalRepo := repositories.NewGoalRepository(db)
	watchRepo := repositories.NewWatchlistRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	userRepo := repositories.NewUserRepository(db)

	activity := services.NewActivityService(activityRepo, taskRepo, goalRepo, clk, log)
	h := routes.Handlers{
		Task:      handlers.NewTaskHandler(services.NewTaskService(taskRepo, activity, c, clk, log), log),
		Goal:      handlers.NewGoalHandler(services.NewGoalService(goalRepo, activity, c, clk, log), log),
		Watchlist: handlers.NewWatchlistHandler(services.NewWatchlistService(watchRepo, activity, c, clk, log), log),
		Activity:  handlers.NewActivityHandler(activity, log),
		User: handlers.NewUserHandler(services.NewUserService(services.UserDeps{
			Users:      userRepo,
			Tasks:      taskRepo,
			Goals:      goalRepo,
			Watchlist:  watchRepo,
			Activities: activityRepo,
		}, c, clk, log), pdf.NewExportGenerator(""), log),
	}

	return &server{t: t, router: routes.SetupRoutes(gin.New(), secret, h), clock: clk}
}

func (s *server) token(userID string) string {
	s.t.Helper()
	tok, err := utils.NewAccessToken(secret, userID, "Test "+userID, userID+"@example.com", time.Hour, time.Now())
	if err != nil {
		s.t.Fatalf("sign token: %v", err)
	}
	return tok
}

func (s *server) do(userID, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(userID))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// must runs a request, checks the status and decodes the body into out.
func (s *server) must(want int, out any, userID, method, path string, body any) {
	s.t.Helper()
	w := s.do(userID, method, path, body)
	if w.Code != want {
		s.t.Fatalf("%s %s: status = %d, want %d: %s", method, path, w.Code, want, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			s.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	s := newServer(t)

	if w := s.do("", http.MethodGet, "/healthz", nil); w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}
	for _, path := range []string{"/tasks", "/goals", "/watchlist", "/history", "/analytics", "/user/preferences"} {
		if w := s.do("", http.MethodGet, path, nil); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, w.Code)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newServer(t)

	var task models.Task
	s.must(http.StatusCreated, &task, "u1", http.MethodPost, "/tasks", map[string]any{
		"title":     "  Write report ",
		"due_date":  "2024-03-12T09:00:00Z",
		"recurring": map[string]any{"is_recurring": true, "frequency": "daily"},
	})
	if task.Title != "Write report" || task.Status != models.TaskPending || task.TimerStatus != models.TimerIdle {
		t.Fatalf("created = %+v", task)
	}

	path := "/tasks/" + task.ID
	s.must(http.StatusOK, &task, "u1", http.MethodPost, path+"/timer/start", nil)
	s.clock.Advance(90 * time.Second)
	s.must(http.StatusOK, &task, "u1", http.MethodGet, path, nil)
	if task.TimerStatus != models.TimerRunning || task.ElapsedTime != 90_000 || task.AccumulatedTime != 0 {
		t.Errorf("running = %s elapsed=%d acc=%d", task.TimerStatus, task.ElapsedTime, task.AccumulatedTime)
	}
	s.must(http.StatusOK, &task, "u1", http.MethodPost, path+"/timer/pause", nil)
	if task.TimerStatus != models.TimerPaused || task.AccumulatedTime != 90_000 {
		t.Errorf("paused = %s acc=%d", task.TimerStatus, task.AccumulatedTime)
	}
	if w := s.do("u1", http.MethodPost, path+"/timer/jump", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown action = %d, want 400", w.Code)
	}

	s.must(http.StatusOK, &task, "u1", http.MethodPatch, path, map[string]any{"status": "completed"})
	if task.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	// the timer survives a plain update
	if task.AccumulatedTime != 90_000 {
		t.Errorf("accumulated after update = %d", task.AccumulatedTime)
	}

	var tasks []models.Task
	s.must(http.StatusOK, &tasks, "u1", http.MethodGet, "/tasks", nil)
	if len(tasks) != 2 {
		t.Fatalf("tasks after recurring completion = %d, want 2", len(tasks))
	}
	var successor models.Task
	for _, tk := range tasks {
		if tk.ID != task.ID {
			successor = tk
		}
	}
	wantDue := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	if successor.Status != models.TaskPending || successor.DueDate == nil || !successor.DueDate.Equal(wantDue) {
		t.Errorf("successor = %+v", successor)
	}

	var cleared models.Task
	s.must(http.StatusOK, &cleared, "u1", http.MethodPatch, "/tasks/"+successor.ID, map[string]any{"due_date": nil})
	if cleared.DueDate != nil {
		t.Errorf("due_date after null patch = %v", cleared.DueDate)
	}
	var reread models.Task
	s.must(http.StatusOK, &reread, "u1", http.MethodGet, "/tasks/"+successor.ID, nil)
	if reread.DueDate != nil {
		t.Errorf("stored due_date after null patch = %v", reread.DueDate)
	}

	var msg map[string]string
	s.must(http.StatusOK, &msg, "u1", http.MethodDelete, path, nil)
	if msg["message"] != "Task deleted" {
		t.Errorf("delete message = %q", msg["message"])
	}
	s.must(http.StatusNotFound, nil, "u1", http.MethodGet, path, nil)

	if w := s.do("u1", http.MethodPost, "/tasks", map[string]any{"title": "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank title = %d, want 400", w.Code)
	}
}

func TestOwnerIsolation(t *testing.T) {
	s := newServer(t)

	var task models.Task
	s.must(http.StatusCreated, &task, "alice", http.MethodPost, "/tasks", map[string]any{"title": "secret"})

	missing := s.do("bob", http.MethodGet, "/tasks/does-not-exist", nil)
	foreign := s.do("bob", http.MethodGet, "/tasks/"+task.ID, nil)
	if foreign.Code != http.StatusNotFound || foreign.Body.String() != missing.Body.String() {
		t.Errorf("foreign = %d %s, missing = %s", foreign.Code, foreign.Body.String(), missing.Body.String())
	}
	for _, method := range []string{http.MethodPatch, http.MethodDelete} {
		if w := s.do("bob", method, "/tasks/"+task.ID, map[string]any{"title": "x"}); w.Code != http.StatusNotFound {
			t.Errorf("%s foreign = %d, want 404", method, w.Code)
		}
	}
	if w := s.do("bob", http.MethodPost, "/tasks/"+task.ID+"/timer/start", nil); w.Code != http.StatusNotFound {
		t.Errorf("timer foreign = %d, want 404", w.Code)
	}

	var tasks []models.Task
	s.must(http.StatusOK, &tasks, "bob", http.MethodGet, "/tasks", nil)
	if len(tasks) != 0 {
		t.Errorf("bob sees %d tasks", len(tasks))
	}
}

func TestGoalSubtasks(t *testing.T) {
	s := newServer(t)

	var goal models.Goal
	s.must(http.StatusCreated, &goal, "u1", http.MethodPost, "/goals", map[string]any{
		"title":    "Run a marathon",
		"subtasks": []map[string]any{{"title": "5k"}, {"title": "10k"}},
	})
	if goal.Emoji != models.DefaultGoalEmoji || goal.Progress != 0 {
		t.Fatalf("created = %+v", goal)
	}

	path := "/goals/" + goal.ID
	var res services.GoalResult
	s.must(http.StatusOK, &res, "u1", http.MethodPost, path+"/subtasks/0/toggle", nil)
	if res.Goal.Progress != 50 || res.JustCompleted {
		t.Errorf("after first toggle = %d %v", res.Goal.Progress, res.JustCompleted)
	}
	s.must(http.StatusOK, &res, "u1", http.MethodPost, path+"/subtasks/1/toggle", nil)
	if res.Goal.Progress != 100 || !res.JustCompleted {
		t.Errorf("after second toggle = %d %v", res.Goal.Progress, res.JustCompleted)
	}

	var raw map[string]any
	s.must(http.StatusOK, &raw, "u1", http.MethodPatch, path, map[string]any{"title": "Run a faster marathon"})
	if raw["id"] != goal.ID || raw["title"] != "Run a faster marathon" || raw["progress"] != float64(100) {
		t.Errorf("patched goal = %v", raw)
	}
	if jc, ok := raw["just_completed"].(bool); !ok || jc {
		t.Errorf("just_completed = %v, want false next to the record fields", raw["just_completed"])
	}
	if _, nested := raw["goal"]; nested {
		t.Errorf("goal wrapped in an envelope: %v", raw)
	}

	for _, idx := range []string{"2", "-1", "first"} {
		if w := s.do("u1", http.MethodPost, path+"/subtasks/"+idx+"/toggle", nil); w.Code != http.StatusBadRequest {
			t.Errorf("toggle %s = %d, want 400", idx, w.Code)
		}
	}

	var msg map[string]string
	s.must(http.StatusOK, &msg, "u1", http.MethodDelete, path, nil)
	if msg["message"] != "Goal deleted" {
		t.Errorf("delete message = %q", msg["message"])
	}
}

func TestWatchlistAndHistory(t *testing.T) {
	s := newServer(t)

	var item models.WatchlistItem
	s.must(http.StatusCreated, &item, "u1", http.MethodPost, "/watchlist", map[string]any{
		"title": "Dune", "type": "movie", "year": 2021,
	})
	if item.Status != models.WatchNotStarted {
		t.Errorf("status = %s", item.Status)
	}
	if w := s.do("u1", http.MethodPost, "/watchlist", map[string]any{"title": "X", "type": "podcast"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad type = %d, want 400", w.Code)
	}

	s.clock.Advance(time.Minute)
	s.must(http.StatusOK, &item, "u1", http.MethodPatch, "/watchlist/"+item.ID, map[string]any{"status": "finished", "rating": 9})
	if item.WatchedAt == nil || item.Rating == nil || *item.Rating != 9 {
		t.Errorf("finished item = %+v", item)
	}

	var history []models.Activity
	s.must(http.StatusOK, &history, "u1", http.MethodGet, "/history", nil)
	if len(history) != 2 || history[0].Action != models.ActionWatchlistFinished || history[1].Action != models.ActionWatchlistAdded {
		t.Fatalf("history = %+v", history)
	}
	if history[0].Details.Title != "Dune" || history[0].Details.Type != models.MediaMovie {
		t.Errorf("details = %+v", history[0].Details)
	}

	var analytics models.Analytics
	s.must(http.StatusOK, &analytics, "u1", http.MethodGet, "/analytics", nil)
	if analytics.Stats.TotalActionsLastWeek != 2 || analytics.WeeklyCompletions != [7]int{} {
		t.Errorf("analytics = %+v", analytics)
	}

	var msg map[string]string
	s.must(http.StatusOK, &msg, "u1", http.MethodDelete, "/watchlist/"+item.ID, nil)
	if msg["message"] != "Item deleted" {
		t.Errorf("delete message = %q", msg["message"])
	}
}

func TestPreferencesExportAndAccountDeletion(t *testing.T) {
	s := newServer(t)

	var prefs models.Preferences
	s.must(http.StatusOK, &prefs, "u1", http.MethodGet, "/user/preferences", nil)
	if prefs != models.DefaultPreferences() {
		t.Errorf("defaults = %+v", prefs)
	}
	s.must(http.StatusOK, &prefs, "u1", http.MethodPatch, "/user/preferences", map[string]any{
		"preferences": map[string]any{"theme": "dark"},
	})
	s.must(http.StatusOK, &prefs, "u1", http.MethodPatch, "/user/preferences", map[string]any{"compact_view": true})
	if prefs.Theme != models.ThemeDark || !prefs.CompactView || !prefs.ShowTimestamps {
		t.Errorf("merged = %+v", prefs)
	}
	if w := s.do("u1", http.MethodPatch, "/user/preferences", map[string]any{"theme": "neon"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad theme = %d, want 400", w.Code)
	}

	s.must(http.StatusCreated, nil, "u1", http.MethodPost, "/tasks", map[string]any{"title": "t"})
	s.must(http.StatusCreated, nil, "u1", http.MethodPost, "/goals", map[string]any{"title": "g"})
	s.must(http.StatusCreated, nil, "u2", http.MethodPost, "/tasks", map[string]any{"title": "other"})

	var exp models.Export
	s.must(http.StatusOK, &exp, "u1", http.MethodGet, "/user/export", nil)
	if exp.User.ID != "u1" || exp.User.Email != "u1@example.com" {
		t.Errorf("export user = %+v", exp.User)
	}
	if len(exp.Data.Tasks) != 1 || len(exp.Data.Goals) != 1 || len(exp.Data.History) != 2 {
		t.Errorf("export data = %d tasks %d goals %d history", len(exp.Data.Tasks), len(exp.Data.Goals), len(exp.Data.History))
	}

	w := s.do("u1", http.MethodGet, "/user/export?format=pdf", nil)
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("pdf export = %d", w.Code)
	}

	var msg map[string]string
	s.must(http.StatusOK, &msg, "u1", http.MethodDelete, "/user/delete", nil)
	if msg["message"] != "Account and data deleted successfully" {
		t.Errorf("delete message = %q", msg["message"])
	}

	var tasks []models.Task
	s.must(http.StatusOK, &tasks, "u1", http.MethodGet, "/tasks", nil)
	if len(tasks) != 0 {
		t.Errorf("tasks after deletion = %d", len(tasks))
	}
	s.must(http.StatusOK, &prefs, "u1", http.MethodGet, "/user/preferences", nil)
	if prefs != models.DefaultPreferences() {
		t.Errorf("preferences after deletion = %+v", prefs)
	}
	s.must(http.StatusOK, &tasks, "u2", http.MethodGet, "/tasks", nil)
	if len(tasks) != 1 {
		t.Errorf("u2 tasks = %d, want 1", len(tasks))
	}
}
