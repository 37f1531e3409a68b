package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"time"
)

// JSONL writes one event per line as {"type": ..., "time": ..., "data": {...}}.
// The resulting file is a complete audit trail of the run and can be
// replayed or diffed between runs.
type JSONL struct {
	f *os.File
	w *bufio.Writer
}

type jsonlEnvelope struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

func NewJSONL(path string) (*JSONL, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONL{f: f, w: bufio.NewWriter(f)}, nil
}

func (j *JSONL) write(typ string, t time.Time, data any) error {
	b, err := json.Marshal(jsonlEnvelope{Type: typ, Time: t, Data: data})
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	return j.w.WriteByte('\n')
}

func (j *JSONL) RecordOrder(o OrderRecord) error {
	return j.write("order", o.Date, o)
}

func (j *JSONL) RecordTrade(t TradeRecord) error {
	return j.write("trade", t.ExitDate, t)
}

func (j *JSONL) RecordEquity(e EquitySnapshot) error {
	return j.write("snapshot", e.Date, e)
}

func (j *JSONL) RecordSignal(s SignalRecord) error {
	return j.write("signal", s.Date, s)
}

func (j *JSONL) Close() error {
	if err := j.w.Flush(); err != nil {
		return err
	}
	return j.f.Close()
}
