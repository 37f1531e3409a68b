package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LoadCSV reads daily bars into a Store from rows of the form:
//
//	date,symbol,open,close[,volume]
//
// where date is YYYY-MM-DD or RFC3339. A single header row ("date,...")
// is allowed. Empty/short rows are skipped. Rows outside [from, to] are
// ignored when either bound is non-zero.
func LoadCSV(path string, from, to time.Time) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	store := NewStore()
	sawFirst := false

	for {
		row, err := r.Read()
		if err == io.EOF {
			return store, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		b, ok, err := parseBarRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !inRange(b.Date, from, to) {
			continue
		}
		store.Add(b)
	}
}

func parseBarRow(row []string) (Bar, bool, error) {
	// Need at least: date,symbol,open,close
	if len(row) < 4 {
		return Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return Bar{}, false, nil
	}
	t, err := time.Parse("2006-01-02", ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339, ts)
		if err2 != nil {
			return Bar{}, false, fmt.Errorf("bad date %q: %w", ts, err)
		}
		t = t2
	}

	sym := strings.TrimSpace(row[1])
	if sym == "" {
		return Bar{}, false, nil
	}

	open, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil {
		return Bar{}, false, fmt.Errorf("bad open %q: %w", row[2], err)
	}
	clos, err := decimal.NewFromString(strings.TrimSpace(row[3]))
	if err != nil {
		return Bar{}, false, fmt.Errorf("bad close %q: %w", row[3], err)
	}

	var vol int64
	if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
		vol, err = strconv.ParseInt(strings.TrimSpace(row[4]), 10, 64)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad volume %q: %w", row[4], err)
		}
	}

	return Bar{Symbol: sym, Date: Day(t), Open: open, Close: clos, Volume: vol}, true, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(Day(from)) {
		return false
	}
	if !to.IsZero() && t.After(Day(to)) {
		return false
	}
	return true
}
