package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/dispatch"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/mapping"
	"github.com/km-arc/go-mvc/framework/metrics"
	"github.com/km-arc/go-mvc/framework/routing"
	"github.com/km-arc/go-mvc/framework/scanner"
)

// Version is reported by the CLI.
const Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

// Startup phases reported by StartupError.
const (
	PhaseConfig   = "config"
	PhaseScan     = "scan"
	PhaseRegister = "register"
	PhaseInject   = "inject"
	PhaseMapping  = "mapping"
)

// StartupError wraps any failure that stops the application before it
// serves. Err is one of the typed errors of the failing package.
type StartupError struct {
	Phase string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed during %s: %v", e.Phase, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Application bootstraps the container and route table from configuration
// and serves them.
type Application struct {
	Config *config.Config

	catalog *scanner.Catalog
	log     *zap.Logger
	metrics *metrics.Collector
}

// Option configures an Application.
type Option func(*Application)

// WithCatalog scans c instead of scanner.Default.
func WithCatalog(c *scanner.Catalog) Option {
	return func(a *Application) { a.catalog = c }
}

// WithLogger sets the logger handed to every component.
func WithLogger(l *zap.Logger) Option {
	return func(a *Application) { a.log = l }
}

// WithMetrics records dispatches on c. A nil c disables metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *Application) { a.metrics = c }
}

// New creates an application for cfg. cfg.App.ContextPath is cleaned in
// place so the router and the dispatcher strip the same prefix.
//
//	application := app.New(config.Load(), app.WithLogger(logger))
//	ctx, err := application.Bootstrap()
func New(cfg *config.Config, opts ...Option) *Application {
	cfg.App.ContextPath = gohttp.CleanContextPath(cfg.App.ContextPath)
	a := &Application{
		Config:  cfg,
		catalog: scanner.Default,
		log:     zap.NewNop(),
	}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Context is the result of a successful bootstrap. Nothing in it changes
// afterwards.
type Context struct {
	Properties *config.ContextConfig
	Container  *container.Container
	Mapping    mapping.HandlerMapping
	Injections []container.InjectionTarget
	Dispatcher *dispatch.Dispatcher
}

// Unresolved returns the injection targets that were left nil.
func (c *Context) Unresolved() []container.InjectionTarget {
	var out []container.InjectionTarget
	for _, t := range c.Injections {
		if !t.Resolved {
			out = append(out, t)
		}
	}
	return out
}

// Bootstrap reads the properties file, scans the configured namespace,
// registers and wires every bean and builds the route table. On success
// the container and catalog are frozen.
func (a *Application) Bootstrap() (*Context, error) {
	props, err := config.LoadProperties(a.Config.Context.ConfigLocation)
	if err != nil {
		return nil, &StartupError{Phase: PhaseConfig, Err: err}
	}
	a.log.Info("properties loaded",
		zap.String("location", props.ConfigLocation),
		zap.String("scanPackage", props.ScanPackage),
		zap.String("handlerMapping", props.HandlerMapping),
	)

	names, err := a.catalog.Scan(props.ScanPackage)
	if err != nil {
		return nil, &StartupError{Phase: PhaseScan, Err: err}
	}

	c := container.New(container.WithLogger(a.log))
	if err := c.RegisterAll(a.catalog.Definitions(names)); err != nil {
		return nil, &StartupError{Phase: PhaseRegister, Err: err}
	}

	injections, err := c.InjectAll()
	if err != nil {
		return nil, &StartupError{Phase: PhaseInject, Err: err}
	}

	m, err := mapping.Build(c.Beans(), mapping.Strategy(props.HandlerMapping), mapping.WithLogger(a.log))
	if err != nil {
		return nil, &StartupError{Phase: PhaseMapping, Err: err}
	}

	c.Freeze()
	a.catalog.Lock()

	opts := []dispatch.Option{
		dispatch.WithContextPath(a.Config.App.ContextPath),
		dispatch.WithLogger(a.log),
	}
	if a.metrics != nil {
		opts = append(opts, dispatch.WithMetrics(a.metrics))
	}

	a.log.Info("application context ready",
		zap.Int("beans", len(c.Beans())),
		zap.Int("handlers", len(m.Handlers())),
	)
	return &Context{
		Properties: props,
		Container:  c,
		Mapping:    m,
		Injections: injections,
		Dispatcher: dispatch.New(m, opts...),
	}, nil
}

// Handler mounts the dispatcher of ctx, and the metrics endpoint when
// enabled, on a fresh router.
func (a *Application) Handler(ctx *Context) http.Handler {
	r := routing.New(a.log)
	if a.metrics != nil && a.Config.Metrics.Path != "" {
		r.Get(a.Config.Metrics.Path, a.metrics.Handler())
	}
	r.Front(a.Config.App.ContextPath, ctx.Dispatcher)
	return r
}

// Run bootstraps the application and serves on APP_PORT until ctx is
// cancelled, then shuts the server down gracefully. A startup failure is
// returned before anything listens.
func (a *Application) Run(ctx context.Context) error {
	appCtx, err := a.Bootstrap()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+a.Config.App.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.Serve(ctx, ln, appCtx)
}

// Serve serves appCtx on ln until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, ln net.Listener, appCtx *Context) error {
	srv := &http.Server{
		Handler:           a.Handler(appCtx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Info("serving",
		zap.String("app", a.Config.App.Name),
		zap.String("env", a.Config.App.Env),
		zap.String("addr", ln.Addr().String()),
		zap.String("contextPath", a.Config.App.ContextPath),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	a.log.Info("stopped")
	return nil
}

// Metrics returns the collector, or nil when metrics are disabled.
func (a *Application) Metrics() *metrics.Collector { return a.metrics }

// ── Controller base ───────────────────────────────────────────────────────────

// Controller is an embeddable base for controllers that write their own
// responses.
type Controller struct{}

// Response wraps w with the text writer.
func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
