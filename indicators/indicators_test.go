package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feed(ind Indicator, closes ...float64) {
	for _, c := range closes {
		ind.Update(c)
	}
}

func TestSMA(t *testing.T) {
	t.Parallel()

	m := NewSMA(3)
	assert.Equal(t, "SMA(3)", m.Name())
	assert.Equal(t, 3, m.Warmup())

	m.Update(10)
	m.Update(20)
	assert.False(t, m.Ready())
	assert.Zero(t, m.Value(), "no value until warm")

	m.Update(30)
	assert.True(t, m.Ready())
	assert.InDelta(t, 20.0, m.Value(), 1e-9)

	// Window slides: (20+30+40)/3.
	m.Update(40)
	assert.InDelta(t, 30.0, m.Value(), 1e-9)

	m.Reset()
	assert.False(t, m.Ready())
}

func TestEMA(t *testing.T) {
	t.Parallel()

	e := NewEMA(3)
	assert.Equal(t, "EMA(3)", e.Name())

	feed(e, 10, 10)
	assert.False(t, e.Ready())

	e.Update(10)
	assert.True(t, e.Ready())
	assert.InDelta(t, 10.0, e.Value(), 1e-9, "constant input converges on itself")

	// alpha = 0.5 for period 3: 0.5*20 + 0.5*10.
	e.Update(20)
	assert.InDelta(t, 15.0, e.Value(), 1e-9)

	e.Reset()
	assert.False(t, e.Ready())
	assert.Zero(t, e.Value())
}

func TestNewClampsPeriod(t *testing.T) {
	t.Parallel()

	m := NewSMA(0)
	m.Update(7)
	assert.True(t, m.Ready())

	e := NewEMA(-1)
	e.Update(7)
	assert.True(t, e.Ready())
}

func TestCross(t *testing.T) {
	t.Parallel()

	c := NewCross(NewSMA(1), NewSMA(2))

	// Warmup and the first warm diff never signal.
	assert.Equal(t, CrossNone, c.Update(10))
	assert.Equal(t, CrossNone, c.Update(10))

	// Rising close pushes the fast side above the slow: fast=20 vs slow=15.
	assert.Equal(t, CrossUp, c.Update(20))
	assert.True(t, c.Above())

	// Staying above is not a new signal.
	assert.Equal(t, CrossNone, c.Update(25))

	// Falling back through: fast=10 vs slow=17.5.
	assert.Equal(t, CrossDown, c.Update(10))
	assert.False(t, c.Above())

	c.Reset()
	assert.Equal(t, CrossNone, c.Update(10))
	assert.False(t, c.Above())
}
