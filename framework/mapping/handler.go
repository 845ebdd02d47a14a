// Package mapping builds the route table that maps request paths to
// controller methods.
//
// Two strategies exist. StrategyExact keys handlers by their exact
// normalized path and binds request parameters by scanning each argument's
// name tag per request. StrategyPattern compiles every path into an anchored
// regular expression, keeps handlers in registration order (first match
// wins) and precomputes a parameter-index table per handler.
//
// Both are built once at startup from the container's controllers and are
// read-only afterwards.
package mapping

import (
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/km-arc/go-mvc/framework/meta"
)

// Strategy selects the handler mapping implementation.
type Strategy string

const (
	StrategyExact   Strategy = "exact"
	StrategyPattern Strategy = "pattern"
)

var (
	requestType  = reflect.TypeFor[*http.Request]()
	responseType = reflect.TypeFor[http.ResponseWriter]()
)

// Reserved ParamIndex keys for the request and response arguments.
var (
	RequestKey  = meta.TypeName(requestType)
	ResponseKey = meta.TypeName(responseType)
)

// ── Bindings ─────────────────────────────────────────────────────────────────

// BindingKind says where an argument's value comes from.
type BindingKind int

const (
	Unbound BindingKind = iota
	RequestObject
	ResponseObject
	NamedValue
)

func (k BindingKind) String() string {
	switch k {
	case RequestObject:
		return "request"
	case ResponseObject:
		return "response"
	case NamedValue:
		return "param"
	default:
		return "unbound"
	}
}

// Binding describes one argument position. Name is set for NamedValue only.
type Binding struct {
	Kind BindingKind
	Name string
}

// ── Handler ──────────────────────────────────────────────────────────────────

// Handler is one route: a path shape bound to a controller method plus its
// argument plan.
type Handler struct {
	// Path is the normalized path, or the pattern source for StrategyPattern.
	Path    string
	Pattern *regexp.Regexp

	Bean       string
	Controller any
	MethodName string

	// Method is the method value bound to Controller.
	Method     reflect.Value
	ParamTypes []reflect.Type
	Bindings   []Binding

	// ParamIndex maps parameter names, RequestKey and ResponseKey to
	// argument positions.
	ParamIndex map[string]int
}

// String renders the handler for route listings.
func (h *Handler) String() string {
	return h.Path + " → " + h.Bean + "." + h.MethodName
}

// newHandler derives the argument plan of method from its parameter types
// and the mapping's name tags. An argument typed *http.Request or
// http.ResponseWriter binds by type and ignores any name tag.
func newHandler(path, bean string, controller any, name string, method reflect.Value, params []string) *Handler {
	mt := method.Type()
	h := &Handler{
		Path:       path,
		Bean:       bean,
		Controller: controller,
		MethodName: name,
		Method:     method,
		ParamTypes: make([]reflect.Type, mt.NumIn()),
		Bindings:   make([]Binding, mt.NumIn()),
		ParamIndex: make(map[string]int),
	}

	for i := range mt.NumIn() {
		t := mt.In(i)
		h.ParamTypes[i] = t
		if i < len(params) {
			if n := strings.TrimSpace(params[i]); n != "" {
				h.Bindings[i] = Binding{Kind: NamedValue, Name: n}
				h.ParamIndex[n] = i
			}
		}
	}

	// Request and response slots are recorded after the names so they win
	// a collision in the index, matching the per-position precedence.
	for i, t := range h.ParamTypes {
		switch t {
		case requestType:
			h.Bindings[i] = Binding{Kind: RequestObject}
			h.ParamIndex[RequestKey] = i
		case responseType:
			h.Bindings[i] = Binding{Kind: ResponseObject}
			h.ParamIndex[ResponseKey] = i
		}
	}
	return h
}

// ── HandlerMapping ───────────────────────────────────────────────────────────

// HandlerMapping resolves a normalized request path to a handler.
type HandlerMapping interface {
	Strategy() Strategy
	Lookup(path string) (*Handler, bool)
	// Handlers lists the table in lookup order.
	Handlers() []*Handler
}

// Normalize collapses every run of '/' into one. It is idempotent.
func Normalize(path string) string {
	if !strings.Contains(path, "//") {
		return path
	}
	var b strings.Builder
	b.Grow(len(path))
	prevSlash := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
