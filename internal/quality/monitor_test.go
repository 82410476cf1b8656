package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoWarningBeforeWindowFills(t *testing.T) {
	m := New(3, 0.5)
	assert.False(t, m.Observe(0.1))
	assert.False(t, m.Observe(0.1))
}

func TestWarnsExactlyOncePerDownwardCrossing(t *testing.T) {
	m := New(3, 0.5)
	m.Observe(0.9)
	m.Observe(0.9)
	assert.False(t, m.Observe(0.9)) // window [0.9,0.9,0.9], mean 0.9 >= floor

	assert.False(t, m.Observe(0.1)) // window [0.9,0.9,0.1], mean 0.633 >= floor: not yet a crossing
	assert.True(t, m.Observe(0.1))  // window [0.9,0.1,0.1], mean 0.367 < floor: first crossing
	assert.False(t, m.Observe(0.1)) // window [0.1,0.1,0.1], still below floor: no re-warn
}

func TestRecoveryAllowsReWarning(t *testing.T) {
	m := New(2, 0.5)
	m.Observe(0.9)
	assert.False(t, m.Observe(0.9)) // window [0.9,0.9], mean 0.9 >= floor

	assert.True(t, m.Observe(0.0))  // window [0.9,0.0], mean 0.45 < floor: first crossing
	assert.False(t, m.Observe(0.0)) // window [0.0,0.0], still below floor: no re-warn

	assert.False(t, m.Observe(0.9)) // window [0.0,0.9], mean 0.45 < floor: still below, no re-warn
	assert.False(t, m.Observe(0.9)) // window [0.9,0.9], mean 0.9 >= floor: recovered, no warning on recovery itself

	assert.True(t, m.Observe(0.0)) // window [0.9,0.0], mean 0.45 < floor: crossing again after recovery
}
