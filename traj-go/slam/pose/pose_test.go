package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEulerRoundTrip(t *testing.T) {
	angles := [][3]float64{
		{0, 0, 0},
		{0.1, -0.2, 0.3},
		{-1.2, 0.7, 2.9},
		{math.Pi / 4, -math.Pi / 3, math.Pi / 6},
	}
	for _, a := range angles {
		r := RotationFromEuler(a[0], a[1], a[2])
		x, y, z := EulerFromRotation(r)
		assert.InDelta(t, a[0], x, 1e-9)
		assert.InDelta(t, a[1], y, 1e-9)
		assert.InDelta(t, a[2], z, 1e-9)
	}
}

func TestComposeInverse(t *testing.T) {
	p := New(0.1, 0.2, 0.3, 1, -2, 3)
	id := p.Compose(p.Inverse())

	x, y, z := id.Translation()
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.InDelta(t, 0, z, 1e-9)
	assert.InDelta(t, 0, id.RotationAngle(), 1e-6)
}

func TestDelta(t *testing.T) {
	a := New(0, 0, 0, 1, 0, 0)
	b := New(0, 0, 0, 3, 1, 0)

	d := a.Delta(b)
	x, y, z := d.Translation()
	assert.InDelta(t, 2, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
	assert.InDelta(t, 0, z, 1e-9)
}

func TestToGlobal(t *testing.T) {
	// three unit steps along x
	step := New(0, 0, 0, 1, 0, 0)
	rt := RelativeTrajectory{step, step, step}

	global := rt.ToGlobal()
	require.Len(t, global, 4)
	for i, p := range global {
		x, _, _ := p.Translation()
		assert.InDelta(t, float64(i), x, 1e-9)
	}
}

func TestToGlobalWithRotation(t *testing.T) {
	// step forward, turn 90 degrees about z, step forward again:
	// the second step must land in the rotated frame.
	forward := New(0, 0, 0, 1, 0, 0)
	turn := New(0, 0, math.Pi/2, 1, 0, 0)
	rt := RelativeTrajectory{turn, forward}

	global := rt.ToGlobal()
	require.Len(t, global, 3)
	x, y, _ := global[2].Translation()
	assert.InDelta(t, 1, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
}
