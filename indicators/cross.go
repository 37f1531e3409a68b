package indicators

// CrossSignal is the outcome of one crossover update.
type CrossSignal int

const (
	CrossNone CrossSignal = iota
	CrossUp               // fast moved above slow
	CrossDown             // fast moved below slow
)

// Cross tracks the sign of fast minus slow and reports the day the sign
// flips. No signal is emitted until both indicators are warm and one
// prior diff has been observed, so the first warm reading never counts
// as a cross.
type Cross struct {
	fast Indicator
	slow Indicator

	lastDiff float64
	haveDiff bool
}

func NewCross(fast, slow Indicator) *Cross {
	return &Cross{fast: fast, slow: slow}
}

func (c *Cross) Reset() {
	c.fast.Reset()
	c.slow.Reset()
	c.lastDiff = 0
	c.haveDiff = false
}

// Update consumes one close and reports whether it produced a crossing.
func (c *Cross) Update(close float64) CrossSignal {
	c.fast.Update(close)
	c.slow.Update(close)

	if !c.fast.Ready() || !c.slow.Ready() {
		return CrossNone
	}

	diff := c.fast.Value() - c.slow.Value()
	defer func() {
		c.lastDiff = diff
		c.haveDiff = true
	}()

	if !c.haveDiff {
		return CrossNone
	}

	switch {
	case c.lastDiff <= 0 && diff > 0:
		return CrossUp
	case c.lastDiff >= 0 && diff < 0:
		return CrossDown
	default:
		return CrossNone
	}
}

// Above reports whether fast is currently above slow. False until both
// sides are warm.
func (c *Cross) Above() bool {
	return c.fast.Ready() && c.slow.Ready() && c.fast.Value() > c.slow.Value()
}
