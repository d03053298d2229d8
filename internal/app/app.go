package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"taskManager/internal/client"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/repository/task/inmemory"
	"taskManager/internal/repository/task/mongodb"
	"taskManager/internal/repository/task/postgres"
	"taskManager/internal/service"
	"taskManager/internal/ui"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

type App struct {
	config     *config.Config
	server     *http.Server
	listener   net.Listener
	repository service.TaskRepository
	service    *service.TaskService
	serving    *errgroup.Group
	// run in reverse order on shutdown
	shutdowns []closer
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]closer, 0),
	}
}

// Init builds the repository, the service and the HTTP server and binds the
// listen address. Nothing is served until Start.
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.onShutdown("logger", func(context.Context) error {
		logger.Sync()
		return nil
	})

	if err := a.initRepository(ctx); err != nil {
		return err
	}
	a.service = service.NewTaskService(a.repository)

	listener, err := net.Listen("tcp", a.config.GetServerAddr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.config.GetServerAddr(), err)
	}
	a.listener = listener

	a.server = &http.Server{
		Handler:      NewRouter(a.config, a.service, a.uiAPI()),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("App: initialized",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.Addr()),
		zap.Bool("ui", a.config.UI.Enabled),
		zap.Bool("tracing", a.config.Tracing.Enabled))
	return nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryMongo:
		storage, err := mongodb.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("init mongo repository: %w", err)
		}
		a.repository = storage
		a.onShutdown("mongo", storage.Close)

	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("init postgres repository: %w", err)
		}
		a.onShutdown("postgres", func(context.Context) error {
			storage.Close()
			return nil
		})
		if err := storage.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		a.repository = storage

	case config.RepositoryInMemory:
		a.repository = inmemory.NewTaskStorage()

	default:
		return fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}
	return nil
}

// NewRouter wires middleware, the task API and, when uiAPI is not nil, the
// browser UI backed by it.
func NewRouter(cfg *config.Config, svc handlers.Service, uiAPI ui.TaskAPI) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if cfg.Server.RateLimit > 0 {
		r.Use(middleware.RateLimit(cfg.Server.RateLimit))
	}

	handlers.NewTaskHandler(svc).Routes(r)
	if uiAPI != nil {
		ui.NewHandler(uiAPI).Routes(r)
	}

	if cfg.Tracing.Enabled {
		return otelhttp.NewHandler(r, cfg.Tracing.ServiceName)
	}
	return r
}

// Start serves HTTP in the background. Serve errors surface from Shutdown.
func (a *App) Start() {
	a.serving = &errgroup.Group{}
	a.serving.Go(func() error {
		logger.Info("App: serving HTTP", zap.String("addr", a.Addr()))
		if err := a.server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
}

// Addr is the bound listen address.
func (a *App) Addr() string {
	if a.listener == nil {
		return a.config.GetServerAddr()
	}
	return a.listener.Addr().String()
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// releases everything Init acquired.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.server != nil {
		logger.Info("App: stopping HTTP server")
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http: %w", err))
		}
		if a.serving != nil {
			if err := a.serving.Wait(); err != nil {
				errs = append(errs, err)
			}
		} else if a.listener != nil {
			_ = a.listener.Close()
		}
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		c := a.shutdowns[i]
		logger.Info("App: closing", zap.String("component", c.name))
		if err := c.fn(ctx); err != nil {
			logger.Error("App: close failed", err, zap.String("component", c.name))
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}

	return errors.Join(errs...)
}

func (a *App) onShutdown(name string, fn func(context.Context) error) {
	a.shutdowns = append(a.shutdowns, closer{name: name, fn: fn})
}

// uiAPI is what the board talks to: a remote API when ui.api_url is set,
// otherwise this process's service.
func (a *App) uiAPI() ui.TaskAPI {
	switch {
	case !a.config.UI.Enabled:
		return nil
	case a.config.UI.APIURL != "":
		return client.New(a.config.UI.APIURL)
	default:
		return ui.NewServiceAPI(a.service)
	}
}
