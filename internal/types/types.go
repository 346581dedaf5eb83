package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade side constants
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// LogRow is one trading event parsed from a daily CSV log. Rows are
// immutable once loaded; identity is (File, Line).
type LogRow struct {
	File      string          `json:"file"`
	Line      int             `json:"line"`
	Timestamp time.Time       `json:"timestamp"` // time of day on the log's date
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Fee       decimal.Decimal `json:"fee,omitempty"`
	Status    string          `json:"status,omitempty"`
}

// Notional returns quantity * price for the row.
func (r LogRow) Notional() decimal.Decimal {
	return r.Price.Mul(decimal.NewFromInt(r.Quantity))
}

// DailyLog holds the ordered rows for one calendar date. Owned by the
// loader's cache; MalformedRows counts lines that failed coercion and
// were skipped.
type DailyLog struct {
	Date          time.Time
	File          string
	Rows          []LogRow
	MalformedRows int
}

// DateExpression is a resolved, non-empty set of concrete calendar
// dates (midnight UTC), ascending. Label keeps the phrase it came from
// for user-facing answers.
type DateExpression struct {
	Dates []time.Time
	Label string
}

// Single reports whether the expression names exactly one date.
func (d DateExpression) Single() bool { return len(d.Dates) == 1 }

// IntentKind is the query shape the executor runs.
type IntentKind string

const (
	IntentAggregate IntentKind = "AGGREGATE"
	IntentLookup    IntentKind = "LOOKUP"
	IntentCompare   IntentKind = "COMPARE"
	IntentList      IntentKind = "LIST"
	IntentDates     IntentKind = "DATES"
	IntentGreeting  IntentKind = "GREETING"
	IntentHelp      IntentKind = "HELP"
)

// Metric names the value an Aggregate or Compare computes.
type Metric string

const (
	MetricVolume   Metric = "VOLUME"   // sum of quantities
	MetricNotional Metric = "NOTIONAL" // sum of quantity*price
	MetricPrice    Metric = "PRICE"    // average trade price
	MetricTrades   Metric = "TRADES"   // row count
	MetricProfit   Metric = "PROFIT"   // sell notional minus buy notional
)

// GroupBy dimensions for Aggregate queries.
const (
	GroupBySymbol = "SYMBOL"
	GroupByMarket = "MARKET"
)

// ListFilter is the residual filter a List query applies after date
// resolution. Zero values mean "no constraint".
type ListFilter struct {
	Symbol   string
	Side     string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

// QueryIntent is the structured interpretation of a question. Kind
// selects the variant; the remaining fields carry its parameters.
type QueryIntent struct {
	Kind    IntentKind
	Metric  Metric // Aggregate, Compare
	GroupBy string // Aggregate only, "" or GroupBySymbol/GroupByMarket
	Symbol  string // symbol filter; "" matches all
	Market  string // market alias filter ("korean", "japan"), "" matches all
	Filter  ListFilter

	// Date phrases extracted from the question. DatePhrase drives
	// Aggregate/Lookup/List; Compare uses both A and B.
	DatePhrase     string
	ComparePhraseA string
	ComparePhraseB string
}

// IntentGuess is the schema the language-understanding fallback must
// fill in. The classifier validates it before accepting.
type IntentGuess struct {
	Intent     string `json:"intent"`
	Symbol     string `json:"symbol,omitempty"`
	Metric     string `json:"metric,omitempty"`
	DatePhrase string `json:"date_phrase,omitempty"`
	Refused    bool   `json:"refused,omitempty"`
}

// ResultKind tags a QueryResult variant.
type ResultKind string

const (
	ResultScalar ResultKind = "SCALAR"
	ResultTable  ResultKind = "TABLE"
	ResultEmpty  ResultKind = "EMPTY"
)

// Unit describes what a scalar value measures, so the formatter can
// pick integer vs money rendering.
type Unit string

const (
	UnitShares Unit = "shares"
	UnitMoney  Unit = "money"
	UnitTrades Unit = "trades"
)

// QueryResult is produced fresh per query. Scalar carries Value+Unit,
// Table carries Header+Rows, Empty carries nothing.
type QueryResult struct {
	Kind     ResultKind
	Value    decimal.Decimal
	Unit     Unit
	Currency string // currency symbol for money scalars, may be ""
	Header   []string
	Rows     [][]string
	Title    string
}

// Scalar builds a scalar result.
func Scalar(v decimal.Decimal, u Unit, currency string) QueryResult {
	return QueryResult{Kind: ResultScalar, Value: v, Unit: u, Currency: currency}
}

// Table builds a table result.
func Table(title string, header []string, rows [][]string) QueryResult {
	return QueryResult{Kind: ResultTable, Title: title, Header: header, Rows: rows}
}

// Empty builds the empty result.
func Empty() QueryResult { return QueryResult{Kind: ResultEmpty} }
