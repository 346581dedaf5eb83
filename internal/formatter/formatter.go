// Package formatter renders typed query results as human-readable
// text for the chat transport. Money rounds to two decimals, counts
// stay integers, tables are width-aligned and capped at a fixed row
// count, and the empty result always renders a fixed message.
package formatter

import (
	"fmt"
	"strings"
	"time"

	"stock-trading-chatbot/internal/types"
)

// NoMatchingData is the fixed message for empty results.
const NoMatchingData = "No matching data found."

// Clarification is the fixed message for unclassifiable questions.
const Clarification = "I didn't understand that. Try asking about a stock's volume, notional, or price on a specific day, e.g. \"total volume for AAPL yesterday\"."

// GreetingMessage answers hello/hi questions.
const GreetingMessage = "Hello! I answer questions about recorded trading activity. Ask me things like \"total volume for AAPL yesterday\" or \"market summary for today\"."

// HelpMessage lists what the engine can answer.
const HelpMessage = `I can answer questions about the daily trade logs:
  - Aggregates: "total volume for AAPL yesterday", "average price for 7203.T"
  - Lookups:    "trades for AAPL on 2024-03-03"
  - Listings:   "show sell trades above $100 last week"
  - Comparisons: "compare AAPL volume today vs yesterday"
  - Summaries:  "market summary for today", "most active symbol this week"
Dates can be phrases like today, yesterday, last week, March 3, or 2024-03-03.`

type Formatter struct {
	maxTableRows int
}

func New(maxTableRows int) *Formatter {
	return &Formatter{maxTableRows: maxTableRows}
}

// Format renders a QueryResult. It never returns an empty string.
func (f *Formatter) Format(result types.QueryResult) string {
	switch result.Kind {
	case types.ResultScalar:
		return f.formatScalar(result)
	case types.ResultTable:
		return f.formatTable(result)
	default:
		return NoMatchingData
	}
}

func (f *Formatter) formatScalar(r types.QueryResult) string {
	switch r.Unit {
	case types.UnitMoney:
		return r.Currency + r.Value.StringFixed(2)
	case types.UnitShares:
		return r.Value.StringFixed(0) + " shares"
	case types.UnitTrades:
		return r.Value.StringFixed(0) + " trades"
	default:
		return r.Value.String()
	}
}

func (f *Formatter) formatTable(r types.QueryResult) string {
	if len(r.Rows) == 0 {
		return NoMatchingData
	}
	rows := r.Rows
	truncated := 0
	if len(rows) > f.maxTableRows {
		truncated = len(rows) - f.maxTableRows
		rows = rows[:f.maxTableRows]
	}

	widths := make([]int, len(r.Header))
	for i, h := range r.Header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	if r.Title != "" {
		b.WriteString(r.Title)
		b.WriteString("\n\n")
	}
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		b.WriteString("\n")
	}
	writeRow(r.Header)
	sep := make([]string, len(r.Header))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	if truncated > 0 {
		fmt.Fprintf(&b, "... %d more rows (showing first %d)\n", truncated, f.maxTableRows)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NoDataFor renders the user-facing answer for a missing log file.
func NoDataFor(label string) string {
	return fmt.Sprintf("No trading data recorded for %s.", label)
}

// ClarifyDate renders the clarification request for a date phrase the
// resolver could not interpret.
func ClarifyDate(phrase string) string {
	if phrase == "" {
		return "I couldn't work out which date you meant. Try \"today\", \"yesterday\", or a date like 2024-03-03."
	}
	return fmt.Sprintf("I couldn't work out which date %q refers to. Try \"today\", \"yesterday\", or a date like 2024-03-03.", phrase)
}

// AvailableDates renders the list of dates the engine has logs for.
func AvailableDates(dates []time.Time) string {
	if len(dates) == 0 {
		return "No trading log files are available yet."
	}
	var b strings.Builder
	b.WriteString("I have trading data for the following dates:\n")
	for _, d := range dates {
		fmt.Fprintf(&b, "  - %s (%s)\n", d.Format("2006-01-02"), d.Weekday())
	}
	return strings.TrimRight(b.String(), "\n")
}
