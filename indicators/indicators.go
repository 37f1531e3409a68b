// Package indicators provides streaming technical indicators computed
// over daily closing prices. All indicators are deterministic: feeding
// the same close sequence always produces the same values.
package indicators

import "fmt"

// Indicator consumes one closing price per trading day.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "EMA(12)".
	Name() string

	// Warmup returns how many updates are needed before Ready can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closing price.
	Update(close float64)

	// Ready reports whether Value is meaningful.
	Ready() bool

	// Value returns the current indicator value; zero before Ready.
	Value() float64
}

// SMA is a streaming simple moving average over the last period closes.
type SMA struct {
	period int
	window []float64
}

func NewSMA(period int) *SMA {
	if period <= 0 {
		period = 1
	}
	return &SMA{period: period, window: make([]float64, 0, period)}
}

func (m *SMA) Name() string { return fmt.Sprintf("SMA(%d)", m.period) }
func (m *SMA) Warmup() int  { return m.period }
func (m *SMA) Reset()       { m.window = m.window[:0] }
func (m *SMA) Ready() bool  { return len(m.window) >= m.period }

func (m *SMA) Update(close float64) {
	m.window = append(m.window, close)
	if len(m.window) > m.period {
		m.window = m.window[1:]
	}
}

func (m *SMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	sum := 0.0
	for _, c := range m.window {
		sum += c
	}
	return sum / float64(len(m.window))
}

// EMA is a streaming exponential moving average. The first update seeds
// the value directly; Ready turns true once period closes are consumed.
type EMA struct {
	period int
	alpha  float64
	value  float64
	count  int
}

func NewEMA(period int) *EMA {
	if period <= 0 {
		period = 1
	}
	return &EMA{period: period, alpha: 2.0 / (float64(period) + 1.0)}
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }
func (e *EMA) Warmup() int  { return e.period }
func (e *EMA) Ready() bool  { return e.count >= e.period }

func (e *EMA) Reset() {
	e.value = 0
	e.count = 0
}

func (e *EMA) Update(close float64) {
	e.count++
	if e.count == 1 {
		e.value = close
		return
	}
	e.value = e.alpha*close + (1.0-e.alpha)*e.value
}

func (e *EMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.value
}
