package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-trading-chatbot/internal/types"
)

func TestFormatScalar(t *testing.T) {
	f := New(50)

	money := types.Scalar(decimal.RequireFromString("1502.5"), types.UnitMoney, "$")
	assert.Equal(t, "$1502.50", f.Format(money))

	won := types.Scalar(decimal.RequireFromString("357000"), types.UnitMoney, "₩")
	assert.Equal(t, "₩357000.00", f.Format(won))

	shares := types.Scalar(decimal.NewFromInt(60), types.UnitShares, "")
	assert.Equal(t, "60 shares", f.Format(shares))

	trades := types.Scalar(decimal.NewFromInt(3), types.UnitTrades, "")
	assert.Equal(t, "3 trades", f.Format(trades))
}

func TestFormatEmpty(t *testing.T) {
	f := New(50)
	assert.Equal(t, NoMatchingData, f.Format(types.Empty()))
}

func TestFormatTable(t *testing.T) {
	f := New(50)
	res := types.Table("Trades for AAPL",
		[]string{"symbol", "side", "quantity"},
		[][]string{
			{"AAPL", "BUY", "100"},
			{"AAPL", "SELL", "5"},
		})

	out := f.Format(res)
	lines := strings.Split(out, "\n")
	// Title, blank, header, separator, two rows.
	require.Len(t, lines, 6)
	assert.Equal(t, "Trades for AAPL", lines[0])
	assert.Contains(t, lines[2], "symbol")
	assert.Contains(t, lines[3], "---")
	// Columns align: every "side" cell starts at the same offset.
	assert.Equal(t, strings.Index(lines[4], "BUY"), strings.Index(lines[5], "SELL"))
}

func TestFormatTableTruncation(t *testing.T) {
	f := New(2)
	rows := [][]string{
		{"AAPL", "1"}, {"MSFT", "2"}, {"GOOG", "3"}, {"TSLA", "4"}, {"AMZN", "5"},
	}
	out := f.Format(types.Table("", []string{"symbol", "n"}, rows))

	assert.Contains(t, out, "... 3 more rows (showing first 2)")
	assert.NotContains(t, out, "GOOG")
	assert.Contains(t, out, "MSFT")
}

func TestFormatNeverEmpty(t *testing.T) {
	f := New(1)
	for _, r := range []types.QueryResult{
		types.Empty(),
		types.Scalar(decimal.Zero, types.UnitMoney, ""),
		types.Table("", nil, nil),
		{},
	} {
		assert.NotEmpty(t, f.Format(r))
	}
}

func TestNoDataFor(t *testing.T) {
	assert.Equal(t, "No trading data recorded for yesterday.", NoDataFor("yesterday"))
}

func TestClarifyDate(t *testing.T) {
	assert.Contains(t, ClarifyDate("someday"), `"someday"`)
	assert.Contains(t, ClarifyDate(""), "which date you meant")
}

func TestAvailableDates(t *testing.T) {
	assert.Equal(t, "No trading log files are available yet.", AvailableDates(nil))

	d := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	out := AvailableDates([]time.Time{d})
	assert.Contains(t, out, "2024-03-04")
	assert.Contains(t, out, "Monday")
}
