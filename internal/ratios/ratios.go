// Package ratios computes financial ratios from statement totals and bands
// each one as good, warning or bad.
package ratios

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/statements"
)

// Status is a health band.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusBad     Status = "bad"
)

// Ratio keys, in the order ComputeRatios returns them.
const (
	KeyCurrentRatio    = "current_ratio"
	KeyQuickRatio      = "quick_ratio"
	KeyDebtToEquity    = "debt_to_equity"
	KeyNetProfitMargin = "net_profit_margin"
	KeyReturnOnAssets  = "return_on_assets"
	KeyWorkingCapital  = "working_capital"
)

// Totals are the statement figures the ratios are computed from.
type Totals struct {
	CurrentAssets      decimal.Decimal `json:"currentAssets"`
	CurrentLiabilities decimal.Decimal `json:"currentLiabilities"`
	Inventory          decimal.Decimal `json:"inventory"`
	TotalLiabilities   decimal.Decimal `json:"totalLiabilities"`
	TotalEquity        decimal.Decimal `json:"totalEquity"`
	TotalAssets        decimal.Decimal `json:"totalAssets"`
	NetIncome          decimal.Decimal `json:"netIncome"`
	Revenue            decimal.Decimal `json:"revenue"`

	// QuickAssets replaces CurrentAssets - Inventory in the quick ratio
	// when valid.
	QuickAssets decimal.NullDecimal `json:"quickAssets"`
}

// TotalsFrom collects the ratio inputs from an income statement and a
// balance sheet for the same window.
func TotalsFrom(inc statements.Income, sheet statements.Sheet) Totals {
	return Totals{
		CurrentAssets:      sheet.CurrentAssets,
		CurrentLiabilities: sheet.CurrentLiabilities,
		Inventory:          sheet.Inventory,
		TotalLiabilities:   sheet.TotalLiabilities,
		TotalEquity:        sheet.TotalEquity,
		TotalAssets:        sheet.TotalAssets,
		NetIncome:          inc.NetIncome,
		Revenue:            inc.Revenue,
	}
}

// Result is one computed ratio. Value is invalid (JSON null) when the
// ratio is undefined, in which case Formatted is "N/A" and Status is
// warning.
type Result struct {
	Key       string              `json:"key"`
	Label     string              `json:"label"`
	Formula   string              `json:"formula"`
	Value     decimal.NullDecimal `json:"value"`
	Formatted string              `json:"formatted"`
	Status    Status              `json:"status"`
}

// Thresholds are the band cut-offs for one ratio. For a higher-is-better
// ratio a value >= Good is good and >= Warning is warning; for
// lower-is-better the comparisons are <=.
type Thresholds struct {
	Good    decimal.Decimal
	Warning decimal.Decimal
}

type format int

const (
	formatTimes format = iota
	formatPercent
	formatCurrency
)

type definition struct {
	key           string
	label         string
	formula       string
	format        format
	lowerIsBetter bool
	thresholds    Thresholds
	compute       func(Totals) decimal.NullDecimal
}

func th(good, warning string) Thresholds {
	return Thresholds{Good: decimal.RequireFromString(good), Warning: decimal.RequireFromString(warning)}
}

func definitions() []definition {
	return []definition{
		{
			key:        KeyCurrentRatio,
			label:      "Current Ratio",
			formula:    "Current Assets / Current Liabilities",
			format:     formatTimes,
			thresholds: th("2.0", "1.5"),
			compute: func(t Totals) decimal.NullDecimal {
				return divide(t.CurrentAssets, t.CurrentLiabilities)
			},
		},
		{
			key:        KeyQuickRatio,
			label:      "Quick Ratio",
			formula:    "(Current Assets - Inventory) / Current Liabilities",
			format:     formatTimes,
			thresholds: th("1.0", "0.7"),
			compute: func(t Totals) decimal.NullDecimal {
				quick := t.CurrentAssets.Sub(t.Inventory)
				if t.QuickAssets.Valid {
					quick = t.QuickAssets.Decimal
				}
				return divide(quick, t.CurrentLiabilities)
			},
		},
		{
			key:           KeyDebtToEquity,
			label:         "Debt to Equity",
			formula:       "Total Liabilities / Total Equity",
			format:        formatTimes,
			lowerIsBetter: true,
			thresholds:    th("1.0", "2.0"),
			compute: func(t Totals) decimal.NullDecimal {
				return divide(t.TotalLiabilities, t.TotalEquity)
			},
		},
		{
			key:        KeyNetProfitMargin,
			label:      "Net Profit Margin",
			formula:    "Net Income / Revenue",
			format:     formatPercent,
			thresholds: th("0.15", "0.05"),
			compute: func(t Totals) decimal.NullDecimal {
				return divide(t.NetIncome, t.Revenue)
			},
		},
		{
			key:        KeyReturnOnAssets,
			label:      "Return on Assets",
			formula:    "Net Income / Total Assets",
			format:     formatPercent,
			thresholds: th("0.10", "0.03"),
			compute: func(t Totals) decimal.NullDecimal {
				return divide(t.NetIncome, t.TotalAssets)
			},
		},
		{
			key:     KeyWorkingCapital,
			label:   "Working Capital",
			formula: "Current Assets - Current Liabilities",
			format:  formatCurrency,
			compute: func(t Totals) decimal.NullDecimal {
				return decimal.NewNullDecimal(t.CurrentAssets.Sub(t.CurrentLiabilities))
			},
		},
	}
}

// Engine computes the fixed ratio set with its band thresholds.
type Engine struct {
	defs []definition
}

// NewEngine returns an engine with the default thresholds replaced by
// overrides, keyed by ratio key. Working capital is banded by sign and
// cannot be overridden.
func NewEngine(overrides map[string]Thresholds) (*Engine, error) {
	defs := definitions()
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		index[d.key] = i
	}

	for key, t := range overrides {
		i, ok := index[key]
		if !ok {
			return nil, fmt.Errorf("unknown ratio %q", key)
		}
		d := &defs[i]
		if d.format == formatCurrency {
			return nil, fmt.Errorf("ratio %q has no thresholds", key)
		}
		if d.lowerIsBetter && t.Good.GreaterThan(t.Warning) {
			return nil, fmt.Errorf("ratio %q: good threshold %s must not exceed warning %s", key, t.Good, t.Warning)
		}
		if !d.lowerIsBetter && t.Good.LessThan(t.Warning) {
			return nil, fmt.Errorf("ratio %q: good threshold %s must not be below warning %s", key, t.Good, t.Warning)
		}
		d.thresholds = t
	}
	return &Engine{defs: defs}, nil
}

// Compute returns the six ratios in fixed order.
func (e *Engine) Compute(t Totals) []Result {
	out := make([]Result, 0, len(e.defs))
	for _, d := range e.defs {
		v := d.compute(t)
		out = append(out, Result{
			Key:       d.key,
			Label:     d.label,
			Formula:   d.formula,
			Value:     v,
			Formatted: d.render(v),
			Status:    d.classify(v),
		})
	}
	return out
}

var defaultEngine = &Engine{defs: definitions()}

// ComputeRatios computes the ratios with the default thresholds.
func ComputeRatios(t Totals) []Result {
	return defaultEngine.Compute(t)
}

func divide(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(num.Div(den))
}

func (d definition) classify(v decimal.NullDecimal) Status {
	if !v.Valid {
		return StatusWarning
	}
	x := v.Decimal

	switch {
	case d.format == formatCurrency:
		switch x.Sign() {
		case 1:
			return StatusGood
		case -1:
			return StatusBad
		}
		return StatusWarning
	case d.lowerIsBetter:
		if x.LessThanOrEqual(d.thresholds.Good) {
			return StatusGood
		}
		if x.LessThanOrEqual(d.thresholds.Warning) {
			return StatusWarning
		}
		return StatusBad
	default:
		if x.GreaterThanOrEqual(d.thresholds.Good) {
			return StatusGood
		}
		if x.GreaterThanOrEqual(d.thresholds.Warning) {
			return StatusWarning
		}
		return StatusBad
	}
}

func (d definition) render(v decimal.NullDecimal) string {
	if !v.Valid {
		return "N/A"
	}
	switch d.format {
	case formatPercent:
		return v.Decimal.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
	case formatCurrency:
		return FormatCurrency(v.Decimal)
	default:
		return v.Decimal.StringFixed(2) + "x"
	}
}
