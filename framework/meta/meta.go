// Package meta holds the declarative metadata the container and the route
// builder read at startup: which types are controllers or services, the
// names they are registered under, the capabilities they declare and the
// request mappings of controller methods.
//
// Go has no annotations, so a type's tags are spelled out once, next to the
// type, as a Definition:
//
//	var DemoActionDef = meta.Controller[DemoAction](
//	    meta.BasePath("/demo"),
//	    meta.RequestMapping("/query", "Query", "", "", "name"),
//	)
//
//	var DemoServiceDef = meta.Service[DemoService](
//	    meta.Implements[IDemoService](),
//	)
//
// Field injection uses a struct tag instead:
//
//	type DemoAction struct {
//	    demoService IDemoService `autowired:""`         // by declared type
//	    audit       *Audit       `autowired:"auditLog"` // by explicit name
//	}
package meta

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AutowiredTag is the struct tag key marking an injectable field.
const AutowiredTag = "autowired"

// Stereotype is the component marker carried by a type.
type Stereotype int

const (
	// Untagged marks a scanned type the container must not instantiate.
	Untagged Stereotype = iota
	ControllerType
	ServiceType
)

func (s Stereotype) String() string {
	switch s {
	case ControllerType:
		return "controller"
	case ServiceType:
		return "service"
	default:
		return "none"
	}
}

// Mapping is a request-mapping tag on a controller method.
//
// Params lines up with the method's parameters (receiver excluded): Params[i]
// is the explicit request-parameter name bound to argument i, "" for none.
// Arguments of type *http.Request and http.ResponseWriter are recognised by
// type and need no name.
type Mapping struct {
	Path   string
	Method string
	Params []string
}

// Definition is the complete set of tags for one type.
type Definition struct {
	// Name is the fully-qualified type name, see TypeName.
	Name       string
	Type       reflect.Type
	Stereotype Stereotype

	// Value is the explicit bean name of a service ("" derives it).
	Value    string
	BasePath string

	// Capabilities are the interface types a service is additionally
	// registered under.
	Capabilities []reflect.Type
	Mappings     []Mapping

	// Factory overrides zero-argument construction.
	Factory func() (any, error)
}

// SimpleName returns the unqualified type name.
func (d Definition) SimpleName() string {
	if i := strings.LastIndexByte(d.Name, '.'); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

// Option sets one tag on a Definition.
type Option func(*Definition)

// Controller defines T as a controller.
func Controller[T any](opts ...Option) Definition {
	return define[T](ControllerType, opts)
}

// Service defines T as a service.
func Service[T any](opts ...Option) Definition {
	return define[T](ServiceType, opts)
}

// Component defines T without a stereotype. The scanner lists it, the
// container skips it.
func Component[T any](opts ...Option) Definition {
	return define[T](Untagged, opts)
}

func define[T any](s Stereotype, opts []Option) Definition {
	t := reflect.TypeFor[T]()
	d := Definition{
		Name:       TypeName(t),
		Type:       t,
		Stereotype: s,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Named sets the explicit bean name of a service.
func Named(name string) Option {
	return func(d *Definition) { d.Value = name }
}

// BasePath sets the type-level request mapping of a controller.
func BasePath(path string) Option {
	return func(d *Definition) { d.BasePath = path }
}

// RequestMapping maps path to the exported method named method.
func RequestMapping(path, method string, params ...string) Option {
	return func(d *Definition) {
		d.Mappings = append(d.Mappings, Mapping{Path: path, Method: method, Params: params})
	}
}

// Implements declares capability I. I must be an interface type.
func Implements[I any]() Option {
	return func(d *Definition) {
		d.Capabilities = append(d.Capabilities, reflect.TypeFor[I]())
	}
}

// WithFactory replaces reflect-based construction.
func WithFactory(f func() (any, error)) Option {
	return func(d *Definition) { d.Factory = f }
}

// WithName overrides the fully-qualified name, e.g. for types declared in
// test packages.
func WithName(fqn string) Option {
	return func(d *Definition) { d.Name = fqn }
}

// ── Naming ───────────────────────────────────────────────────────────────────

// Namespace converts a Go import path into a dot-separated namespace.
//
//	Namespace("github.com/km-arc/go-mvc/app") // "github.com.km-arc.go-mvc.app"
func Namespace(pkgPath string) string {
	return strings.ReplaceAll(pkgPath, "/", ".")
}

// TypeName returns the fully-qualified name of t (pointers dereferenced).
// It is the key used for capabilities and for by-type injection.
//
//	TypeName(reflect.TypeFor[*http.Request]()) // "net.http.Request"
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return Namespace(t.PkgPath()) + "." + t.Name()
}

// LowerFirst lower-cases the first rune: "DemoAction" → "demoAction".
func LowerFirst(s string) string {
	return mapFirst(s, unicode.ToLower)
}

// UpperFirst upper-cases the first rune: "demoService" → "DemoService".
func UpperFirst(s string) string {
	return mapFirst(s, unicode.ToUpper)
}

func mapFirst(s string, f func(rune) rune) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(f(r)) + s[n:]
}
