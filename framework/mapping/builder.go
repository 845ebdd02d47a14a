package mapping

import (
	"fmt"
	"reflect"
	"regexp"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/container"
)

// PatternError is returned when a mapping's path does not compile.
type PatternError struct {
	Pattern string
	Bean    string
	Method  string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("mapping: %s.%s: invalid pattern %q: %v", e.Bean, e.Method, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Option configures Build.
type Option func(*builder)

// WithLogger sets the logger used for skipped mappings and the route summary.
func WithLogger(l *zap.Logger) Option {
	return func(b *builder) { b.log = l }
}

type builder struct {
	log *zap.Logger
}

// Build walks the controllers among beans in order, and each controller's
// request mappings in declaration order, producing the route table.
//
// StrategyExact joins base and method path as base + "/" + path and
// normalizes it; no leading slash is added, so a base path without one never
// matches a request. StrategyPattern normalizes "/" + base + "/" + path and
// compiles it as an anchored regular expression. The tag text is embedded
// as-is: metacharacters in a path ("/echo.*") change what it matches.
//
// A mapping that names a missing, unexported or variadic method is skipped
// with a warning.
func Build(beans []*container.BeanEntry, strategy Strategy, opts ...Option) (HandlerMapping, error) {
	b := &builder{log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}

	var (
		exact   *ExactMapping
		pattern *PatternMapping
		result  HandlerMapping
	)
	switch strategy {
	case StrategyExact:
		exact = NewExactMapping()
		result = exact
	case StrategyPattern:
		pattern = NewPatternMapping()
		result = pattern
	default:
		return nil, fmt.Errorf("mapping: unknown strategy %q", strategy)
	}

	for _, bean := range beans {
		if !bean.IsController() {
			continue
		}
		def := bean.Definition
		recv := reflect.ValueOf(bean.Instance)

		for _, m := range def.Mappings {
			method := recv.MethodByName(m.Method)
			if !method.IsValid() {
				b.log.Warn("request mapping skipped: no exported method",
					zap.String("bean", bean.Name),
					zap.String("method", m.Method),
					zap.String("path", m.Path),
				)
				continue
			}
			if method.Type().IsVariadic() {
				b.log.Warn("request mapping skipped: variadic method",
					zap.String("bean", bean.Name),
					zap.String("method", m.Method),
				)
				continue
			}

			if exact != nil {
				path := Normalize(def.BasePath + "/" + m.Path)
				h := newHandler(path, bean.Name, bean.Instance, m.Method, method, m.Params)
				if exact.Add(h) {
					b.log.Warn("request mapping replaced", zap.String("path", path), zap.Stringer("handler", h))
				}
				continue
			}

			src := Normalize("/" + def.BasePath + "/" + m.Path)
			re, err := regexp.Compile("^(?:" + src + ")$")
			if err != nil {
				return nil, &PatternError{Pattern: src, Bean: bean.Name, Method: m.Method, Err: err}
			}
			h := newHandler(src, bean.Name, bean.Instance, m.Method, method, m.Params)
			h.Pattern = re
			pattern.Add(h)
		}
	}

	for _, h := range result.Handlers() {
		b.log.Info("mapped", zap.String("strategy", string(strategy)), zap.Stringer("handler", h))
	}
	return result, nil
}
