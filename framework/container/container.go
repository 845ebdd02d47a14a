package container

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/meta"
)

// ── Bean entries ─────────────────────────────────────────────────────────────

// BeanEntry is one container-managed instance.
type BeanEntry struct {
	// Name is the primary key: explicit service value or lower-camel type name.
	Name       string
	Instance   any
	Definition meta.Definition

	// Capabilities are the supplemental keys this entry is also bound under.
	Capabilities []string
}

// IsController reports whether the entry came from a controller definition.
func (e *BeanEntry) IsController() bool {
	return e.Definition.Stereotype == meta.ControllerType
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the bean registry.
//
// It is filled in one startup pass (RegisterAll, then InjectAll), then frozen.
// A frozen container is never written again, so request goroutines read it
// without locking.
type Container struct {
	// key (bean name or capability name) → entry
	bindings map[string]*BeanEntry

	// distinct entries in registration order
	beans []*BeanEntry

	frozen bool
	log    *zap.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) { c.log = l }
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		bindings: make(map[string]*BeanEntry),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// RegisterAll instantiates and registers every tagged definition in order.
// Untagged definitions are skipped. The first error aborts the pass and must
// abort startup; the container is left unusable.
//
//	seq, _ := catalog.Scan(props.ScanPackage)
//	if err := c.RegisterAll(catalog.Definitions(seq)); err != nil { ... }
func (c *Container) RegisterAll(defs iter.Seq[meta.Definition]) error {
	for def := range defs {
		if err := c.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Register instantiates one definition and binds it.
//
// Controllers get exactly one key, their lower-camel type name. Services use
// the explicit value when set and are additionally bound under the
// fully-qualified name of every declared capability; a capability key that
// is already bound fails with *DuplicateBindingError.
func (c *Container) Register(def meta.Definition) error {
	if c.frozen {
		return ErrFrozen
	}

	var name string
	switch def.Stereotype {
	case meta.ControllerType:
		name = meta.LowerFirst(def.SimpleName())
	case meta.ServiceType:
		name = def.Value
		if name == "" {
			name = meta.LowerFirst(def.SimpleName())
		}
	default:
		return nil
	}

	instance, err := instantiate(def)
	if err != nil {
		return err
	}

	entry := &BeanEntry{Name: name, Instance: instance, Definition: def}
	c.bind(name, entry)

	if def.Stereotype != meta.ServiceType {
		return nil
	}
	for _, capType := range def.Capabilities {
		key := meta.TypeName(capType)
		if capType.Kind() != reflect.Interface || !reflect.TypeOf(instance).Implements(capType) {
			return &InstantiationError{
				Type: def.Name,
				Err:  fmt.Errorf("does not implement capability %s", key),
			}
		}
		if existing, ok := c.bindings[key]; ok {
			return &DuplicateBindingError{Key: key, Existing: existing.Name, Bean: name}
		}
		c.bindings[key] = entry
		entry.Capabilities = append(entry.Capabilities, key)
	}

	c.log.Debug("bean registered",
		zap.String("bean", name),
		zap.String("type", def.Name),
		zap.Stringer("stereotype", def.Stereotype),
		zap.Strings("capabilities", entry.Capabilities),
	)
	return nil
}

// bind stores entry under its primary name. A bean already holding the name
// is replaced in place, keeping its position in the registration order.
func (c *Container) bind(name string, entry *BeanEntry) {
	if prev, ok := c.bindings[name]; ok && prev.Name == name {
		c.log.Warn("bean name reused, replacing earlier bean",
			zap.String("bean", name),
			zap.String("previous", prev.Definition.Name),
			zap.String("type", entry.Definition.Name),
		)
		if i := slices.Index(c.beans, prev); i >= 0 {
			c.beans[i] = entry
		}
		c.bindings[name] = entry
		return
	}
	c.bindings[name] = entry
	c.beans = append(c.beans, entry)
}

// instantiate builds a bean with its factory or as a zero value of a struct
// type. A panicking factory is reported, not propagated.
func instantiate(def meta.Definition) (instance any, err error) {
	if def.Factory != nil {
		defer func() {
			if rec := recover(); rec != nil {
				instance = nil
				err = &InstantiationError{Type: def.Name, Err: fmt.Errorf("factory panicked: %v", rec)}
			}
		}()
		instance, err = def.Factory()
		if err != nil {
			return nil, &InstantiationError{Type: def.Name, Err: err}
		}
		if instance == nil {
			return nil, &InstantiationError{Type: def.Name, Err: errors.New("factory returned nil")}
		}
		return instance, nil
	}

	t := def.Type
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &InstantiationError{Type: def.Name, Err: errors.New("cannot be constructed with zero arguments")}
	}
	return reflect.New(t).Interface(), nil
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Freeze marks the container read-only. Register fails with ErrFrozen after.
func (c *Container) Freeze() { c.frozen = true }

// Frozen reports whether Freeze has been called.
func (c *Container) Frozen() bool { return c.frozen }

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the entry bound under key (bean name or capability name).
func (c *Container) Get(key string) (*BeanEntry, bool) {
	e, ok := c.bindings[key]
	return e, ok
}

// Make returns the instance bound under key, or nil.
func (c *Container) Make(key string) any {
	if e, ok := c.bindings[key]; ok {
		return e.Instance
	}
	return nil
}

// Bound returns true if key has been registered.
func (c *Container) Bound(key string) bool {
	_, ok := c.bindings[key]
	return ok
}

// Beans returns the distinct entries in registration order.
func (c *Container) Beans() []*BeanEntry {
	return slices.Clone(c.beans)
}

// Controllers returns the controller entries in registration order.
func (c *Container) Controllers() []*BeanEntry {
	var out []*BeanEntry
	for _, e := range c.beans {
		if e.IsController() {
			out = append(out, e)
		}
	}
	return out
}

// Bindings returns every bound key, sorted (for debugging).
func (c *Container) Bindings() []string {
	out := make([]string, 0, len(c.bindings))
	for k := range c.bindings {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the capability key for the type of v. Pass a typed nil
// pointer to name an interface.
//
//	key := container.TypeKey((*service.IDemoService)(nil))
//	svc, ok := container.Resolve[service.IDemoService](c, key)
func TypeKey(v any) string {
	return meta.TypeName(reflect.TypeOf(v))
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve returns the instance bound under key typed as T.
//
//	action, ok := container.Resolve[*action.DemoAction](c, "demoAction")
func Resolve[T any](c *Container, key string) (T, bool) {
	typed, ok := c.Make(key).(T)
	return typed, ok
}

// MustResolve is like Resolve but panics when key is missing or mistyped.
func MustResolve[T any](c *Container, key string) T {
	instance := c.Make(key)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: MustResolve[%T]: [%s] resolved to %T", *new(T), key, instance))
	}
	return typed
}
