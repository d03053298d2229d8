package app_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"taskManager/internal/app"
	"taskManager/internal/client"
	"taskManager/internal/config"
	"taskManager/internal/models/task"
	"taskManager/internal/repository/task/inmemory"
	"taskManager/internal/service"
	"taskManager/internal/ui"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Repository: config.RepositoryConfig{Type: config.RepositoryInMemory},
		UI:         config.UIConfig{Enabled: true},
		Tracing:    config.TracingConfig{ServiceName: "task-api"},
	}
}

func TestApp_Lifecycle(t *testing.T) {
	ctx := context.Background()

	a := app.New(testConfig())
	require.NoError(t, a.Init(ctx))
	a.Start()

	baseURL := "http://" + a.Addr()
	c := client.New(baseURL, client.WithTimeout(5*time.Second))

	resp, err := http.Get(baseURL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	created, err := c.Create(ctx, client.CreateInput{Title: "Buy milk"})
	require.NoError(t, err)

	// the board reads the service in process
	resp, err = http.Get(baseURL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Buy milk")
	assert.Contains(t, string(body), created.ID)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(shutdownCtx))

	_, err = http.Get(baseURL + "/health")
	assert.Error(t, err)
}

func TestApp_UIUsesConfiguredAPI(t *testing.T) {
	ctx := context.Background()

	remoteSvc := service.NewTaskService(inmemory.NewTaskStorage())
	_, err := remoteSvc.CreateTask(ctx, "Remote task", "", task.StatusPending)
	require.NoError(t, err)
	remote := httptest.NewServer(app.NewRouter(testConfig(), remoteSvc, nil))
	defer remote.Close()

	cfg := testConfig()
	cfg.UI.APIURL = remote.URL
	a := app.New(cfg)
	require.NoError(t, a.Init(ctx))
	a.Start()

	resp, err := http.Get("http://" + a.Addr() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "Remote task")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(shutdownCtx))
}

func TestApp_InitRejectsUnknownRepository(t *testing.T) {
	cfg := testConfig()
	cfg.Repository.Type = "redis"

	a := app.New(cfg)
	err := a.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestNewRouter(t *testing.T) {
	svc := service.NewTaskService(inmemory.NewTaskStorage())

	t.Run("cors preflight", func(t *testing.T) {
		router := app.NewRouter(testConfig(), svc, nil)

		req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("ui disabled", func(t *testing.T) {
		router := app.NewRouter(testConfig(), svc, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ui reads the service in process", func(t *testing.T) {
		cfg := testConfig()
		cfg.Server.RateLimit = 1
		_, err := svc.CreateTask(context.Background(), "Board task", "", task.StatusPending)
		require.NoError(t, err)
		router := app.NewRouter(cfg, svc, ui.NewServiceAPI(svc))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Board task")
	})

	t.Run("unknown status filter", func(t *testing.T) {
		router := app.NewRouter(testConfig(), svc, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks?status=archived", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("rate limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.Server.RateLimit = 1
		router := app.NewRouter(cfg, svc, nil)

		first := httptest.NewRecorder()
		router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
		second := httptest.NewRecorder()
		router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("tracing wraps the router", func(t *testing.T) {
		cfg := testConfig()
		cfg.Tracing.Enabled = true
		router := app.NewRouter(cfg, svc, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{"title":"traced"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		tasks, err := svc.ListTasks(context.Background(), task.Filter{Keyword: "traced"})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})
}
