package market

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Store is an in-memory daily-bar oracle. It is safe for concurrent reads
// so independent backtest runs can share one loaded dataset.
type Store struct {
	mu   sync.RWMutex
	bars map[string]map[time.Time]Bar // symbol -> day -> bar
}

func NewStore() *Store {
	return &Store{bars: make(map[string]map[time.Time]Bar)}
}

// Add inserts or replaces a bar. The bar's date is normalized to the day.
func (s *Store) Add(b Bar) {
	day := Day(b.Date)
	b.Date = day

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.bars[b.Symbol]
	if !ok {
		m = make(map[time.Time]Bar)
		s.bars[b.Symbol] = m
	}
	m[day] = b
}

func (s *Store) Bar(symbol string, date time.Time) (Bar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bars[symbol][Day(date)]
	return b, ok
}

func (s *Store) OpeningPrice(symbol string, date time.Time) (decimal.Decimal, bool) {
	b, ok := s.Bar(symbol, date)
	if !ok {
		return decimal.Decimal{}, false
	}
	return b.Open, true
}

func (s *Store) ClosingPrice(symbol string, date time.Time) (decimal.Decimal, bool) {
	b, ok := s.Bar(symbol, date)
	if !ok {
		return decimal.Decimal{}, false
	}
	return b.Close, true
}

// Symbols returns the symbols that have a bar on the given date, sorted
// so iteration order is deterministic across runs.
func (s *Store) Symbols(date time.Time) []string {
	day := Day(date)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for sym, m := range s.bars {
		if _, ok := m[day]; ok {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// PriorClose walks back from the day before date looking for the most
// recent close, giving up after maxBack calendar days. Used for gain
// lookbacks across weekends and data holes.
func (s *Store) PriorClose(symbol string, date time.Time, maxBack int) (decimal.Decimal, time.Time, bool) {
	day := Day(date)
	for i := 0; i < maxBack; i++ {
		day = day.AddDate(0, 0, -1)
		if b, ok := s.Bar(symbol, day); ok {
			return b.Close, day, true
		}
	}
	return decimal.Decimal{}, time.Time{}, false
}
