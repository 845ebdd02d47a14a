// Package routing hosts the front controller on a chi router.
package routing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	gohttp "github.com/km-arc/go-mvc/framework/http"
)

// Router wraps chi.Router. Every request passes RequestID, RealIP, access
// logging and Recoverer before reaching a handler.
type Router struct {
	mux chi.Router
	log *zap.Logger
}

// New creates a Router that logs requests to log.
func New(log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	return &Router{mux: r, log: log}
}

// ── Mounting ─────────────────────────────────────────────────────────────────

// Front mounts h for GET and POST on every path under contextPath, cleaned
// with gohttp.CleanContextPath. Other methods get 405 from chi.
//
//	router.Front("/shop", dispatcher) // /shop, /shop/ and /shop/**
func (r *Router) Front(contextPath string, h http.Handler) {
	base := gohttp.CleanContextPath(contextPath)
	if base != "" {
		r.mux.Method(http.MethodGet, base, h)
		r.mux.Method(http.MethodPost, base, h)
	}
	r.mux.Method(http.MethodGet, base+"/*", h)
	r.mux.Method(http.MethodPost, base+"/*", h)
}

// Get registers an auxiliary GET endpoint such as metrics or health.
func (r *Router) Get(pattern string, h http.Handler) {
	r.mux.Method(http.MethodGet, pattern, h)
}

// Routes lists every mounted "METHOD pattern" pair.
func (r *Router) Routes() []string {
	var out []string
	_ = chi.Walk(r.mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.Server.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RequestLogger is chi's access log written through zap.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("uri", r.RequestURI),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
