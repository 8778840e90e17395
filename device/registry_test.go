package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_TeardownOrderAndPersistence(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	var got []string
	r.OnTeardown("a", func() { got = append(got, "a") })
	r.OnTeardown("b", func() { got = append(got, "b") })

	r.Teardown()
	r.Teardown() // callbacks survive a teardown
	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Deregister(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	calls := 0
	dereg := r.OnTeardown("x", func() { calls++ })
	r.OnTeardown("y", func() {})

	dereg()
	dereg() // idempotent
	require.Equal(t, 1, r.Len())

	r.Teardown()
	assert.Zero(t, calls)
}

// A panic in one callback must not keep the remaining ones from running.
func TestRegistry_PanickingCallback(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	ran := false
	r.OnTeardown("boom", func() { panic("boom") })
	r.OnTeardown("after", func() { ran = true })

	assert.NotPanics(t, r.Teardown)
	assert.True(t, ran)
}

// Callbacks run outside the lock and may deregister themselves.
func TestRegistry_SelfDeregister(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	var dereg func()
	calls := 0
	dereg = r.OnTeardown("once", func() {
		calls++
		dereg()
	})

	r.Teardown()
	r.Teardown()
	assert.Equal(t, 1, calls)
	assert.Zero(t, r.Len())
}

func TestRegistry_EmptyTeardown(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, NewRegistry(nil).Teardown)
}
