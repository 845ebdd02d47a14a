package container

import (
	"errors"
	"strconv"
)

// ErrFrozen is returned by Register once the container has been frozen.
var ErrFrozen = errors.New("container: frozen, registration closed")

// DuplicateBindingError is returned when a second service claims a
// capability key already bound. It aborts startup: injection by that
// capability would be ambiguous.
type DuplicateBindingError struct {
	Key      string
	Existing string // bean already holding Key
	Bean     string // bean that tried to claim it
}

// Error implements the error interface.
func (e *DuplicateBindingError) Error() string {
	// Example: container: capability "app.service.IDemoService" already bound (held by "demoService", claimed by "otherService")
	return "container: capability " + strconv.Quote(e.Key) + " already bound (held by " +
		strconv.Quote(e.Existing) + ", claimed by " + strconv.Quote(e.Bean) + ")"
}

// InstantiationError is returned when a definition cannot produce an instance.
type InstantiationError struct {
	Type string
	Err  error
}

func (e *InstantiationError) Error() string {
	return "container: instantiate " + strconv.Quote(e.Type) + ": " + e.Err.Error()
}

func (e *InstantiationError) Unwrap() error { return e.Err }

// InjectionError is returned when a resolved bean cannot be assigned to the
// field that asked for it.
type InjectionError struct {
	Bean  string
	Field string
	Key   string
	Err   error
}

func (e *InjectionError) Error() string {
	return "container: inject " + e.Bean + "." + e.Field + " from " + strconv.Quote(e.Key) + ": " + e.Err.Error()
}

func (e *InjectionError) Unwrap() error { return e.Err }
