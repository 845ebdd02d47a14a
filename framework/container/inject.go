package container

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"unsafe"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/meta"
)

// InjectionTarget records one autowired field and how it was resolved.
type InjectionTarget struct {
	Bean     string
	Field    string
	Key      string
	Resolved bool
}

// ResolutionKey computes the registry key for an autowired field.
//
// An explicit tag value is trimmed and, unless it is a qualified name
// (contains "."), upper-first-cased: `autowired:"demoService"` looks up
// "DemoService". An empty value falls back to the field's declared type name.
func ResolutionKey(tagValue string, fieldType reflect.Type) string {
	name := strings.TrimSpace(tagValue)
	if name == "" {
		return meta.TypeName(fieldType)
	}
	if !strings.Contains(name, ".") {
		return meta.UpperFirst(name)
	}
	return name
}

// InjectAll assigns every autowired field of every registered bean.
//
// Each bean is visited once regardless of how many keys it is bound under.
// A bean displaced from its name by a later one is still visited while a
// capability key holds it. Every value is read straight from the bindings, so the order in which
// beans are injected does not matter.
//
// A key that resolves to nothing leaves the field nil and is NOT an error;
// it is reported with Resolved=false and logged, since invoking through such
// a field fails later at request time. A resolved bean whose type cannot be
// assigned to the field is an *InjectionError.
func (c *Container) InjectAll() ([]InjectionTarget, error) {
	var targets []InjectionTarget

	for _, entry := range c.injectable() {
		v := reflect.ValueOf(entry.Instance)
		if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
			continue
		}
		s := v.Elem()
		st := s.Type()

		for i := 0; i < st.NumField(); i++ {
			sf := st.Field(i)
			tag, ok := sf.Tag.Lookup(meta.AutowiredTag)
			if !ok {
				continue
			}

			target := InjectionTarget{
				Bean:  entry.Name,
				Field: sf.Name,
				Key:   ResolutionKey(tag, sf.Type),
			}
			field := settable(s.Field(i))

			dep, found := c.bindings[target.Key]
			if !found {
				field.Set(reflect.Zero(sf.Type))
				c.log.Warn("autowired field left unset",
					zap.String("bean", target.Bean),
					zap.String("field", target.Field),
					zap.String("key", target.Key),
				)
				targets = append(targets, target)
				continue
			}

			dv := reflect.ValueOf(dep.Instance)
			if !dv.Type().AssignableTo(sf.Type) {
				return targets, &InjectionError{
					Bean:  target.Bean,
					Field: target.Field,
					Key:   target.Key,
					Err:   errors.New(dv.Type().String() + " is not assignable to " + sf.Type.String()),
				}
			}
			field.Set(dv)
			target.Resolved = true
			targets = append(targets, target)
		}
	}
	return targets, nil
}

// injectable lists every distinct entry reachable from the bindings:
// registered beans in order, then displaced entries by sorted key.
func (c *Container) injectable() []*BeanEntry {
	out := slices.Clone(c.beans)
	for _, key := range c.Bindings() {
		if e := c.bindings[key]; !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

// settable returns a writable view of an addressable field, including
// unexported ones.
func settable(f reflect.Value) reflect.Value {
	if f.CanSet() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}
