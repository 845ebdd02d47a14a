package container_test

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/meta"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type Greeter interface{ Greet(name string) string }

type Auditor interface{ Audit(msg string) }

type greeterService struct{}

func (*greeterService) Greet(name string) string { return "hello " + name }

type politeGreeter struct{}

func (*politeGreeter) Greet(name string) string { return "good day " + name }

type paymentService struct{}

type missingCap interface{ Nope() }

type helloAction struct {
	greeter Greeter         `autowired:""`
	Payment *paymentService `autowired:"payment"`
	missing missingCap      `autowired:""`
	plain   *greeterService
}

type mismatchAction struct {
	greeter *politeGreeter `autowired:"demo.Greeter"`
}

func seq(defs ...meta.Definition) func(func(meta.Definition) bool) {
	return slices.Values(defs)
}

func greeterKey() string { return meta.TypeName(reflect.TypeFor[Greeter]()) }

// ── RegisterAll ───────────────────────────────────────────────────────────────

// TestRegister_Naming verifies controller and service names.
func TestRegister_Naming(t *testing.T) {
	t.Parallel()

	c := container.New()
	err := c.RegisterAll(seq(
		meta.Controller[helloAction](),
		meta.Service[greeterService](),
		meta.Service[paymentService](meta.Named("Payment")),
	))
	require.NoError(t, err)

	assert.True(t, c.Bound("helloAction"))
	assert.True(t, c.Bound("greeterService"))
	assert.True(t, c.Bound("Payment"))
	assert.False(t, c.Bound("paymentService"))

	names := make([]string, 0, 3)
	for _, e := range c.Beans() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"helloAction", "greeterService", "Payment"}, names, "registration order")

	require.Len(t, c.Controllers(), 1)
	assert.Equal(t, "helloAction", c.Controllers()[0].Name)
}

// TestRegister_SkipsUntagged verifies untagged definitions are never instantiated.
func TestRegister_SkipsUntagged(t *testing.T) {
	t.Parallel()

	called := false
	c := container.New()
	err := c.RegisterAll(seq(meta.Component[greeterService](meta.WithFactory(func() (any, error) {
		called = true
		return &greeterService{}, nil
	}))))
	require.NoError(t, err)

	assert.False(t, called)
	assert.Empty(t, c.Beans())
	assert.Empty(t, c.Bindings())
}

// TestRegister_CapabilityKeys verifies services are bound under their capabilities.
func TestRegister_CapabilityKeys(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, c.Register(meta.Service[greeterService](meta.Implements[Greeter]())))

	byName, ok := c.Get("greeterService")
	require.True(t, ok)
	byCap, ok := c.Get(greeterKey())
	require.True(t, ok)

	assert.Same(t, byName, byCap)
	assert.Equal(t, []string{greeterKey()}, byName.Capabilities)
	assert.Equal(t, container.TypeKey((*Greeter)(nil)), greeterKey())
}

// TestRegister_ControllerIgnoresCapabilities verifies controllers get one key only.
func TestRegister_ControllerIgnoresCapabilities(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, c.Register(meta.Controller[greeterService](meta.Implements[Greeter]())))

	assert.Equal(t, []string{"greeterService"}, c.Bindings())
}

// TestRegister_DuplicateCapability verifies a shared capability is fatal.
func TestRegister_DuplicateCapability(t *testing.T) {
	t.Parallel()

	c := container.New()
	err := c.RegisterAll(seq(
		meta.Service[greeterService](meta.Implements[Greeter]()),
		meta.Service[politeGreeter](meta.Implements[Greeter]()),
		meta.Controller[helloAction](),
	))
	require.Error(t, err)

	var dup *container.DuplicateBindingError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, greeterKey(), dup.Key)
	assert.Equal(t, "greeterService", dup.Existing)
	assert.Equal(t, "politeGreeter", dup.Bean)
	assert.Contains(t, err.Error(), greeterKey())

	assert.False(t, c.Bound("helloAction"), "registration stops at the first failure")
}

// TestRegister_UnsatisfiedCapability verifies a declared capability must be implemented.
func TestRegister_UnsatisfiedCapability(t *testing.T) {
	t.Parallel()

	c := container.New()
	err := c.Register(meta.Service[paymentService](meta.Implements[Greeter]()))

	var ie *container.InstantiationError
	require.True(t, errors.As(err, &ie))
	assert.Contains(t, err.Error(), "does not implement")
}

// TestRegister_InstantiationFailures verifies construction failures are reported.
func TestRegister_InstantiationFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name string
		def  meta.Definition
	}{
		{"interface type", meta.Service[Greeter]()},
		{"non-struct type", meta.Service[int]()},
		{"factory error", meta.Service[greeterService](meta.WithFactory(func() (any, error) { return nil, boom }))},
		{"factory nil", meta.Service[greeterService](meta.WithFactory(func() (any, error) { return nil, nil }))},
		{"factory panic", meta.Service[greeterService](meta.WithFactory(func() (any, error) { panic("kaboom") }))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := container.New().Register(tt.def)
			var ie *container.InstantiationError
			require.True(t, errors.As(err, &ie), "got %v", err)
		})
	}

	err := container.New().Register(tests[2].def)
	assert.ErrorIs(t, err, boom)
}

// TestRegister_PointerDefinition verifies *T definitions construct a T.
func TestRegister_PointerDefinition(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, c.Register(meta.Service[*greeterService](meta.WithName("demo.GreeterService"))))

	svc, ok := container.Resolve[*greeterService](c, "greeterService")
	require.True(t, ok)
	assert.NotNil(t, svc)
}

// TestRegister_NameReuseReplaces verifies a reused bean name keeps the later bean.
func TestRegister_NameReuseReplaces(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, c.RegisterAll(seq(
		meta.Service[greeterService](meta.Named("greeter")),
		meta.Service[politeGreeter](meta.Named("greeter")),
	)))

	require.Len(t, c.Beans(), 1)
	_, ok := container.Resolve[*politeGreeter](c, "greeter")
	assert.True(t, ok)
}

// TestRegister_Frozen verifies registration is closed after Freeze.
func TestRegister_Frozen(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Freeze()

	assert.True(t, c.Frozen())
	assert.ErrorIs(t, c.Register(meta.Service[greeterService]()), container.ErrFrozen)
}

// ── Resolve helpers ───────────────────────────────────────────────────────────

func TestResolve_Helpers(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, c.Register(meta.Service[greeterService]()))

	_, ok := container.Resolve[*paymentService](c, "greeterService")
	assert.False(t, ok, "wrong type")

	assert.Nil(t, c.Make("nothing"))
	assert.NotNil(t, container.MustResolve[*greeterService](c, "greeterService"))
	assert.Panics(t, func() { container.MustResolve[*greeterService](c, "nothing") })
}
