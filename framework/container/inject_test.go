package container_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/meta"
)

func bootstrap(t *testing.T, defs ...meta.Definition) (*container.Container, []container.InjectionTarget) {
	t.Helper()
	c := container.New()
	require.NoError(t, c.RegisterAll(seq(defs...)))
	targets, err := c.InjectAll()
	require.NoError(t, err)
	return c, targets
}

func targetFor(targets []container.InjectionTarget, field string) (container.InjectionTarget, bool) {
	for _, tg := range targets {
		if tg.Field == field {
			return tg, true
		}
	}
	return container.InjectionTarget{}, false
}

// TestInjectAll_ByTypeAndByName verifies fields hold the registered instances.
func TestInjectAll_ByTypeAndByName(t *testing.T) {
	t.Parallel()

	c, _ := bootstrap(t,
		meta.Controller[helloAction](),
		meta.Service[greeterService](meta.Implements[Greeter]()),
		meta.Service[paymentService](meta.Named("Payment")),
	)

	action := container.MustResolve[*helloAction](c, "helloAction")
	greeter := container.MustResolve[*greeterService](c, "greeterService")
	payment := container.MustResolve[*paymentService](c, "Payment")

	require.NotNil(t, action.greeter, "unexported field must be injected")
	assert.Same(t, greeter, action.greeter.(*greeterService))
	assert.Same(t, payment, action.Payment, "explicit name is upper-first-cased")
	assert.Nil(t, action.plain, "untagged field untouched")
}

// TestInjectAll_OrderIndependent verifies injection does not depend on registration order.
func TestInjectAll_OrderIndependent(t *testing.T) {
	t.Parallel()

	c, _ := bootstrap(t,
		meta.Service[paymentService](meta.Named("Payment")),
		meta.Service[greeterService](meta.Implements[Greeter]()),
		meta.Controller[helloAction](),
	)

	action := container.MustResolve[*helloAction](c, "helloAction")
	assert.NotNil(t, action.greeter)
	assert.NotNil(t, action.Payment)
}

// TestInjectAll_UnresolvedLeftNil verifies a missing key is neither an error nor assigned.
func TestInjectAll_UnresolvedLeftNil(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, c.RegisterAll(seq(meta.Controller[helloAction]())))

	targets, err := c.InjectAll()
	require.NoError(t, err, "unresolved fields are silent")

	action := container.MustResolve[*helloAction](c, "helloAction")
	assert.Nil(t, action.greeter)
	assert.Nil(t, action.Payment)
	assert.Nil(t, action.missing)

	require.Len(t, targets, 3)
	for _, tg := range targets {
		assert.False(t, tg.Resolved, tg.Field)
	}
	missing, ok := targetFor(targets, "missing")
	require.True(t, ok)
	assert.Equal(t, meta.TypeName(reflect.TypeFor[missingCap]()), missing.Key)
}

// TestInjectAll_ClearsPresetValue verifies an unresolved field is assigned nil.
func TestInjectAll_ClearsPresetValue(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, c.Register(meta.Controller[helloAction](meta.WithFactory(func() (any, error) {
		return &helloAction{Payment: &paymentService{}}, nil
	}))))

	_, err := c.InjectAll()
	require.NoError(t, err)
	assert.Nil(t, container.MustResolve[*helloAction](c, "helloAction").Payment)
}

// TestInjectAll_ReportsTargets verifies each tagged field is reported once.
func TestInjectAll_ReportsTargets(t *testing.T) {
	t.Parallel()

	_, targets := bootstrap(t,
		meta.Controller[helloAction](),
		meta.Service[greeterService](meta.Implements[Greeter]()),
	)

	require.Len(t, targets, 3, "service bound under two keys is still visited once")

	greeter, ok := targetFor(targets, "greeter")
	require.True(t, ok)
	assert.True(t, greeter.Resolved)
	assert.Equal(t, "helloAction", greeter.Bean)
	assert.Equal(t, greeterKey(), greeter.Key)

	payment, ok := targetFor(targets, "Payment")
	require.True(t, ok)
	assert.False(t, payment.Resolved)
	assert.Equal(t, "Payment", payment.Key)
}

// TestInjectAll_TypeMismatch verifies an unassignable bean aborts injection.
func TestInjectAll_TypeMismatch(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, c.RegisterAll(seq(
		meta.Controller[mismatchAction](),
		meta.Service[greeterService](meta.Named("demo.Greeter")),
	)))

	_, err := c.InjectAll()
	var ie *container.InjectionError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "mismatchAction", ie.Bean)
	assert.Equal(t, "greeter", ie.Field)
	assert.Equal(t, "demo.Greeter", ie.Key)
}

// TestResolutionKey covers the key normalisation rules.
func TestResolutionKey(t *testing.T) {
	t.Parallel()

	greeterType := reflect.TypeFor[Greeter]()
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{"empty uses declared type", "", greeterKey()},
		{"blank uses declared type", "   ", greeterKey()},
		{"simple name upper-first", "demoService", "DemoService"},
		{"trimmed", " demoService ", "DemoService"},
		{"qualified kept", "app.service.IDemoService", "app.service.IDemoService"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, container.ResolutionKey(tt.tag, greeterType))
		})
	}
}

type auditedGreeter struct {
	Payment *paymentService `autowired:"payment"`
}

func (*auditedGreeter) Greet(name string) string { return "noted " + name }

// TestInjectAll_DisplacedBeanStillBoundByCapability verifies a bean that lost
// its name to a later bean is still wired while a capability key holds it.
func TestInjectAll_DisplacedBeanStillBoundByCapability(t *testing.T) {
	t.Parallel()

	c, targets := bootstrap(t,
		meta.Service[auditedGreeter](meta.Named("greeter"), meta.Implements[Greeter]()),
		meta.Service[paymentService](meta.Named("Payment")),
		meta.Service[politeGreeter](meta.Named("greeter")),
	)

	_, ok := container.Resolve[*politeGreeter](c, "greeter")
	require.True(t, ok)

	g, ok := container.Resolve[Greeter](c, greeterKey())
	require.True(t, ok)
	audited, ok := g.(*auditedGreeter)
	require.True(t, ok)
	assert.NotNil(t, audited.Payment)

	target, ok := targetFor(targets, "Payment")
	require.True(t, ok)
	assert.True(t, target.Resolved)
	assert.Equal(t, "greeter", target.Bean)
}
