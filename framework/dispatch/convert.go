package dispatch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

var stringType = reflect.TypeFor[string]()

// Flatten joins every value of a request parameter with "," and strips all
// whitespace, so ?tag=a&tag=b yields "a,b" and " Alice " yields "Alice".
func Flatten(values []string) string {
	joined := strings.Join(values, ",")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, joined)
}

// ConversionError is returned when a parameter value cannot be assigned to
// its argument.
type ConversionError struct {
	Value string
	Type  reflect.Type
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %q to %s: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("argument type mismatch: %q is not assignable to %s", e.Value, e.Type)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Convert turns s into a value of type t. Integer and float kinds, and
// pointers to them, are parsed. String kinds are passed through. Any other
// type receives the string itself and fails unless a string is assignable
// to it (an interface such as any).
func Convert(s string, t reflect.Type) (reflect.Value, error) {
	target, ptr := t, false
	if t.Kind() == reflect.Pointer && scalar(t.Elem().Kind()) {
		target, ptr = t.Elem(), true
	}

	v := reflect.New(target).Elem()
	switch k := target.Kind(); {
	case k == reflect.String:
		v.SetString(s)
	case k >= reflect.Int && k <= reflect.Int64:
		n, err := strconv.ParseInt(s, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, &ConversionError{Value: s, Type: t, Err: err}
		}
		v.SetInt(n)
	case k >= reflect.Uint && k <= reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, &ConversionError{Value: s, Type: t, Err: err}
		}
		v.SetUint(n)
	case k == reflect.Float32 || k == reflect.Float64:
		f, err := strconv.ParseFloat(s, target.Bits())
		if err != nil {
			return reflect.Value{}, &ConversionError{Value: s, Type: t, Err: err}
		}
		v.SetFloat(f)
	default:
		if stringType.AssignableTo(t) {
			rv := reflect.New(t).Elem()
			rv.Set(reflect.ValueOf(s))
			return rv, nil
		}
		return reflect.Value{}, &ConversionError{Value: s, Type: t}
	}

	if ptr {
		p := reflect.New(target)
		p.Elem().Set(v)
		return p, nil
	}
	return v, nil
}

func scalar(k reflect.Kind) bool {
	switch {
	case k == reflect.String,
		k >= reflect.Int && k <= reflect.Uintptr,
		k == reflect.Float32 || k == reflect.Float64:
		return true
	}
	return false
}
