// Package dispatch is the front controller: one http.Handler that resolves
// every request against the route table, binds request parameters to the
// handler method's arguments, invokes it and writes the result as text.
package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"go.uber.org/zap"

	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/mapping"
	"github.com/km-arc/go-mvc/framework/metrics"
)

const (
	notFoundBody    = "404 Not Found"
	exceptionPrefix = "500 Exception, Detail : "
)

var errorType = reflect.TypeFor[error]()

// InvocationError is any failure after a handler was selected: argument
// conversion, a panic in the handler, or a non-nil error result.
type InvocationError struct {
	Path   string
	Method string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("dispatch %s → %s: %v", e.Path, e.Method, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithContextPath sets the prefix stripped from request paths before lookup.
// p is cleaned with gohttp.CleanContextPath, as routing.Router.Front does.
func WithContextPath(p string) Option {
	return func(d *Dispatcher) { d.contextPath = gohttp.CleanContextPath(p) }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics records every dispatch on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Dispatcher) { d.metrics = c }
}

// Dispatcher serves every request through one route table. It holds no
// per-request state and is safe for concurrent use.
type Dispatcher struct {
	mapping     mapping.HandlerMapping
	contextPath string
	log         *zap.Logger
	metrics     *metrics.Collector
}

// New returns a dispatcher over m.
func New(m mapping.HandlerMapping, opts ...Option) *Dispatcher {
	d := &Dispatcher{mapping: m, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Mapping returns the route table.
func (d *Dispatcher) Mapping() mapping.HandlerMapping { return d.mapping }

// ServeHTTP dispatches the request. An InvocationError is logged and
// written as the exception body; the status code is left untouched.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome, err := d.dispatch(w, r)
	if err != nil {
		outcome = metrics.OutcomeError
		d.log.Error("dispatch failed",
			zap.String("uri", r.URL.Path),
			zap.Error(err),
		)
		detail := err
		var ie *InvocationError
		if errors.As(err, &ie) {
			detail = ie.Err
		}
		_ = gohttp.NewResponse(w).Text(exceptionPrefix + detail.Error())
	}
	if d.metrics != nil {
		d.metrics.Observe(outcome, time.Since(start))
	}
}

// Dispatch runs one request. A path with no handler writes the not-found
// body and returns nil. Any failure after a handler was chosen is returned
// as *InvocationError and nothing is written.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, r *http.Request) error {
	_, err := d.dispatch(w, r)
	return err
}

func (d *Dispatcher) dispatch(w http.ResponseWriter, r *http.Request) (string, error) {
	req := gohttp.NewRequest(r, d.contextPath)
	res := gohttp.NewResponse(w)
	path := mapping.Normalize(req.Path())

	h, ok := d.mapping.Lookup(path)
	if !ok {
		d.log.Debug("no handler",
			zap.String("method", req.Method()),
			zap.String("uri", req.URI()),
			zap.String("path", path),
		)
		_ = res.Text(notFoundBody)
		return metrics.OutcomeNotFound, nil
	}

	args, err := d.bind(h, req, w)
	if err != nil {
		return "", &InvocationError{Path: path, Method: h.Bean + "." + h.MethodName, Err: err}
	}

	out, err := invoke(h.Method, args)
	if err != nil {
		return "", &InvocationError{Path: path, Method: h.Bean + "." + h.MethodName, Err: err}
	}
	if out != nil {
		if err := res.Text(fmt.Sprint(out)); err != nil {
			d.log.Debug("write failed", zap.String("path", path), zap.Error(err))
		}
	}
	return metrics.OutcomeOK, nil
}

// bind builds the argument list for h. Every slot starts at its zero value.
func (d *Dispatcher) bind(h *mapping.Handler, req *gohttp.Request, w http.ResponseWriter) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(h.ParamTypes))
	for i, t := range h.ParamTypes {
		args[i] = reflect.Zero(t)
	}

	var err error
	if d.mapping.Strategy() == mapping.StrategyExact {
		err = bindByScan(h, req, w, args)
	} else {
		err = bindByIndex(h, req, w, args)
	}
	return args, err
}

// bindByScan matches each request parameter against every argument's name.
func bindByScan(h *mapping.Handler, req *gohttp.Request, w http.ResponseWriter, args []reflect.Value) error {
	for name, values := range req.Params() {
		for i, b := range h.Bindings {
			if b.Kind != mapping.NamedValue || b.Name != name {
				continue
			}
			v, err := Convert(Flatten(values), h.ParamTypes[i])
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			args[i] = v
		}
	}
	for i, b := range h.Bindings {
		switch b.Kind {
		case mapping.RequestObject:
			args[i] = reflect.ValueOf(req.Raw())
		case mapping.ResponseObject:
			args[i] = reflect.ValueOf(&w).Elem()
		}
	}
	return nil
}

// bindByIndex looks each request parameter up in the handler's index, then
// fills the request and response slots.
func bindByIndex(h *mapping.Handler, req *gohttp.Request, w http.ResponseWriter, args []reflect.Value) error {
	for name, values := range req.Params() {
		i, ok := h.ParamIndex[name]
		if !ok || h.Bindings[i].Kind != mapping.NamedValue {
			continue
		}
		v, err := Convert(Flatten(values), h.ParamTypes[i])
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		args[i] = v
	}
	if i, ok := h.ParamIndex[mapping.RequestKey]; ok {
		args[i] = reflect.ValueOf(req.Raw())
	}
	if i, ok := h.ParamIndex[mapping.ResponseKey]; ok {
		args[i] = reflect.ValueOf(&w).Elem()
	}
	return nil
}

// invoke calls method and reduces its results to the value to write, or nil
// for no output. A trailing error result, when non-nil, is returned.
func invoke(method reflect.Value, args []reflect.Value) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	results := method.Call(args)
	if n := len(results); n > 0 && method.Type().Out(n-1) == errorType {
		if e := results[n-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		results = results[:n-1]
	}
	if len(results) == 0 {
		return nil, nil
	}

	v := results[0]
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil, nil
		}
	}
	return v.Interface(), nil
}
