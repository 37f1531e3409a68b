package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"
)

// RunReport collects one backtest run's headline numbers for the org-mode
// export. All derived figures are computed upstream; this type only
// formats them.
type RunReport struct {
	RunID    string
	Created  time.Time
	Strategy string
	Dataset  string

	Start time.Time
	End   time.Time

	InitialCapital string
	FinalCapital   string
	TotalReturn    string
	TotalReturnPct float64
	CAGR           float64
	SharpeRatio    float64
	SortinoRatio   float64
	MaxDrawdownPct float64
	MaxDrawdownDays int

	Trades   int
	Wins     int
	Losses   int
	WinRate  float64
	ProfitFactor float64
	AvgHoldingDays float64

	DroppedSignals int
	RejectedOrders int

	OrgPath string

	Notes []string
}

var reportFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// WriteOrg renders the report to r.OrgPath.
func (r *RunReport) WriteOrg() error {
	t, err := template.New("run").Funcs(reportFuncs).Parse(runOrgTemplate)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, buf.Bytes(), 0644)
}

const runOrgTemplate = `
* BACKTEST: {{.Strategy}} {{.Start.Format "2006-01-02"}}..{{.End.Format "2006-01-02"}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_CAP:   {{.InitialCapital}}
:END_CAP:     {{.FinalCapital}}
:NET_PL:      {{.TotalReturn}}
:RETURN_PCT:  {{printf "%.2f" .TotalReturnPct}}
:CAGR_PCT:    {{printf "%.2f" .CAGR}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDrawdownPct}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{printf "%.2f" .WinRate}}
:PROFIT_FAC:  {{printf "%.2f" .ProfitFactor}}
:SHARPE:      {{printf "%.2f" .SharpeRatio}}
:SORTINO:     {{printf "%.2f" .SortinoRatio}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:          *{{.TotalReturn}}*
- Return:           *{{printf "%.2f" .TotalReturnPct}}%*
- CAGR:             *{{printf "%.2f" .CAGR}}%*
- Max Drawdown:     *{{printf "%.2f" .MaxDrawdownPct}}%* ({{.MaxDrawdownDays}} days)
- Sharpe:           *{{printf "%.2f" .SharpeRatio}}*
- Sortino:          *{{printf "%.2f" .SortinoRatio}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |

- Win Rate:         {{printf "%.2f" .WinRate}}%
- Profit Factor:    {{printf "%.2f" .ProfitFactor}}
- Avg Holding Days: {{printf "%.1f" .AvgHoldingDays}}

** Execution Quality
| Event            | Count |
|------------------+-------|
| Dropped signals  | {{.DroppedSignals}} |
| Rejected orders  | {{.RejectedOrders}} |

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
