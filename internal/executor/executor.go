// Package executor runs a resolved QueryIntent against loaded daily
// logs. Execution is a pure function of its inputs: no hidden state,
// no I/O. All monetary arithmetic uses fixed-precision decimals;
// quantities stay exact integers.
package executor

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stock-trading-chatbot/internal/markets"
	"stock-trading-chatbot/internal/types"
)

// LookupHeader is the column set for Lookup and List tables.
var LookupHeader = []string{"date", "time", "symbol", "side", "quantity", "price"}

// Execute computes the result for an Aggregate, Lookup, or List
// intent over the resolved dates. Compare goes through
// ExecuteCompare.
func Execute(intent types.QueryIntent, dates types.DateExpression, logs map[time.Time]*types.DailyLog) types.QueryResult {
	switch intent.Kind {
	case types.IntentAggregate:
		if intent.GroupBy != "" {
			return executeGrouped(intent, dates, logs)
		}
		rows := matchRows(intent, dates, logs)
		if len(rows) == 0 {
			return types.Empty()
		}
		value, unit := aggregate(intent.Metric, rows)
		return types.Scalar(value, unit, currencyFor(intent))
	case types.IntentLookup:
		rows := matchRows(intent, dates, logs)
		if len(rows) == 0 {
			return types.Empty()
		}
		return types.Table("Trades for "+intent.Symbol, LookupHeader, rowCells(rows))
	case types.IntentList:
		rows := matchRows(intent, dates, logs)
		if len(rows) == 0 {
			return types.Empty()
		}
		return types.Table("Matching trades", LookupHeader, rowCells(rows))
	default:
		return types.Empty()
	}
}

// ExecuteCompare computes the Aggregate independently for each date
// expression and returns a table of the two scalars plus their delta.
func ExecuteCompare(intent types.QueryIntent, datesA, datesB types.DateExpression, logs map[time.Time]*types.DailyLog) types.QueryResult {
	rowsA := matchRows(intent, datesA, logs)
	rowsB := matchRows(intent, datesB, logs)
	if len(rowsA) == 0 && len(rowsB) == 0 {
		return types.Empty()
	}

	valueA, _ := aggregateOrZero(intent.Metric, rowsA)
	valueB, _ := aggregateOrZero(intent.Metric, rowsB)
	delta := valueB.Sub(valueA)

	label := metricLabel(intent.Metric)
	cells := [][]string{
		{datesA.Label, formatMetricCell(intent.Metric, valueA)},
		{datesB.Label, formatMetricCell(intent.Metric, valueB)},
		{"delta", formatMetricCell(intent.Metric, delta)},
	}
	return types.Table("Comparison of "+label, []string{"period", label}, cells)
}

// matchRows collects rows for the resolved dates that pass the
// intent's symbol, market, and residual filters, ordered by date then
// file position for determinism.
func matchRows(intent types.QueryIntent, dates types.DateExpression, logs map[time.Time]*types.DailyLog) []types.LogRow {
	suffixes := markets.SuffixesFor(intent.Market)

	var out []types.LogRow
	for _, d := range dates.Dates {
		dl, ok := logs[d]
		if !ok {
			continue
		}
		for _, row := range dl.Rows {
			if intent.Symbol != "" && row.Symbol != intent.Symbol {
				continue
			}
			if len(suffixes) > 0 && !hasAnySuffix(row.Symbol, suffixes) {
				continue
			}
			if !passesFilter(row, intent.Filter) {
				continue
			}
			out = append(out, row)
		}
	}
	return out
}

func hasAnySuffix(symbol string, suffixes []string) bool {
	info := markets.Lookup(symbol)
	for _, s := range suffixes {
		if info.Suffix == s {
			return true
		}
	}
	return false
}

func passesFilter(row types.LogRow, f types.ListFilter) bool {
	if f.Symbol != "" && row.Symbol != f.Symbol {
		return false
	}
	if f.Side != "" && row.Side != f.Side {
		return false
	}
	if f.PriceMin != nil && row.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && row.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	return true
}

// aggregate computes a metric over a non-empty row set.
func aggregate(metric types.Metric, rows []types.LogRow) (decimal.Decimal, types.Unit) {
	switch metric {
	case types.MetricVolume:
		var sum int64
		for _, r := range rows {
			sum += r.Quantity
		}
		return decimal.NewFromInt(sum), types.UnitShares
	case types.MetricNotional:
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(r.Notional())
		}
		return total, types.UnitMoney
	case types.MetricPrice:
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(r.Price)
		}
		return total.Div(decimal.NewFromInt(int64(len(rows)))), types.UnitMoney
	case types.MetricTrades:
		return decimal.NewFromInt(int64(len(rows))), types.UnitTrades
	case types.MetricProfit:
		profit := decimal.Zero
		for _, r := range rows {
			if r.Side == types.SideSell {
				profit = profit.Add(r.Notional())
			} else {
				profit = profit.Sub(r.Notional())
			}
		}
		return profit, types.UnitMoney
	default:
		return decimal.Zero, types.UnitTrades
	}
}

func aggregateOrZero(metric types.Metric, rows []types.LogRow) (decimal.Decimal, types.Unit) {
	if len(rows) == 0 {
		switch metric {
		case types.MetricVolume:
			return decimal.Zero, types.UnitShares
		case types.MetricTrades:
			return decimal.Zero, types.UnitTrades
		default:
			return decimal.Zero, types.UnitMoney
		}
	}
	return aggregate(metric, rows)
}

// executeGrouped computes the metric per symbol or per market and
// ranks groups by descending value, ties broken by ascending group
// name for reproducibility.
func executeGrouped(intent types.QueryIntent, dates types.DateExpression, logs map[time.Time]*types.DailyLog) types.QueryResult {
	rows := matchRows(intent, dates, logs)
	if len(rows) == 0 {
		return types.Empty()
	}

	groups := make(map[string][]types.LogRow)
	for _, r := range rows {
		key := r.Symbol
		if intent.GroupBy == types.GroupByMarket {
			key = markets.Lookup(r.Symbol).Market
		}
		groups[key] = append(groups[key], r)
	}

	type groupRow struct {
		name   string
		value  decimal.Decimal
		trades int
	}
	ranked := make([]groupRow, 0, len(groups))
	for name, rs := range groups {
		value, _ := aggregate(intent.Metric, rs)
		ranked = append(ranked, groupRow{name: name, value: value, trades: len(rs)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].value.Equal(ranked[j].value) {
			return ranked[i].value.GreaterThan(ranked[j].value)
		}
		return ranked[i].name < ranked[j].name
	})

	dim := "symbol"
	if intent.GroupBy == types.GroupByMarket {
		dim = "market"
	}
	label := metricLabel(intent.Metric)
	cells := make([][]string, 0, len(ranked))
	for _, g := range ranked {
		cells = append(cells, []string{g.name, formatMetricCell(intent.Metric, g.value), strconv.Itoa(g.trades)})
	}
	return types.Table("Breakdown by "+dim, []string{dim, label, "trades"}, cells)
}

func metricLabel(m types.Metric) string {
	switch m {
	case types.MetricVolume:
		return "volume"
	case types.MetricNotional:
		return "notional"
	case types.MetricPrice:
		return "avg price"
	case types.MetricTrades:
		return "trades"
	case types.MetricProfit:
		return "profit"
	default:
		return "value"
	}
}

func formatMetricCell(m types.Metric, v decimal.Decimal) string {
	switch m {
	case types.MetricVolume, types.MetricTrades:
		return v.StringFixed(0)
	default:
		return v.StringFixed(2)
	}
}

func rowCells(rows []types.LogRow) [][]string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			r.Timestamp.Format("2006-01-02"),
			r.Timestamp.Format("15:04:05"),
			r.Symbol,
			r.Side,
			strconv.FormatInt(r.Quantity, 10),
			r.Price.String(),
		})
	}
	return cells
}

func currencyFor(intent types.QueryIntent) string {
	if intent.Metric == types.MetricVolume || intent.Metric == types.MetricTrades {
		return ""
	}
	return markets.CurrencyFor(intent.Symbol)
}
