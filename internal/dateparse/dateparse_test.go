package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ref is Wednesday, March 6 2024. Mid-afternoon, so resolution must
// ignore the time of day.
var ref = time.Date(2024, time.March, 6, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		phrase string
		want   []time.Time
	}{
		{"today", []time.Time{day(2024, time.March, 6)}},
		{"", []time.Time{day(2024, time.March, 6)}},
		{"yesterday", []time.Time{day(2024, time.March, 5)}},
		{"previous day", []time.Time{day(2024, time.March, 5)}},
		{"day before yesterday", []time.Time{day(2024, time.March, 4)}},
		{"two days ago", []time.Time{day(2024, time.March, 4)}},
	}
	for _, tt := range tests {
		expr, err := Resolve(tt.phrase, ref)
		require.NoError(t, err, "phrase %q", tt.phrase)
		assert.Equal(t, tt.want, expr.Dates, "phrase %q", tt.phrase)
	}
}

func TestResolveWeekSpans(t *testing.T) {
	expr, err := Resolve("this week", ref)
	require.NoError(t, err)
	// Monday March 4 through the reference day, never beyond.
	require.Len(t, expr.Dates, 3)
	assert.Equal(t, day(2024, time.March, 4), expr.Dates[0])
	assert.Equal(t, day(2024, time.March, 6), expr.Dates[2])

	expr, err = Resolve("last week", ref)
	require.NoError(t, err)
	require.Len(t, expr.Dates, 7)
	assert.Equal(t, day(2024, time.February, 26), expr.Dates[0])
	assert.Equal(t, day(2024, time.March, 3), expr.Dates[6])

	expr, err = Resolve("this month", ref)
	require.NoError(t, err)
	require.Len(t, expr.Dates, 6)
	assert.Equal(t, day(2024, time.March, 1), expr.Dates[0])
}

func TestResolveWeekday(t *testing.T) {
	expr, err := Resolve("friday", ref)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, time.March, 1)}, expr.Dates)

	expr, err = Resolve("last friday", ref)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, time.March, 1)}, expr.Dates)

	// Naming the reference's own weekday means the previous one.
	expr, err = Resolve("wednesday", ref)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, time.February, 28)}, expr.Dates)
}

func TestResolveAbsolute(t *testing.T) {
	tests := []struct {
		phrase string
		want   time.Time
	}{
		{"2024-03-03", day(2024, time.March, 3)},
		{"2024/3/3", day(2024, time.March, 3)},
		{"3/4/2024", day(2024, time.March, 4)}, // month first
		{"march 3rd, 2024", day(2024, time.March, 3)},
		{"march 3", day(2024, time.March, 3)}, // year from reference
		{"3rd of march 2024", day(2024, time.March, 3)},
		{"feb 29, 2024", day(2024, time.February, 29)},
	}
	for _, tt := range tests {
		expr, err := Resolve(tt.phrase, ref)
		require.NoError(t, err, "phrase %q", tt.phrase)
		require.True(t, expr.Single(), "phrase %q", tt.phrase)
		assert.Equal(t, tt.want, expr.Dates[0], "phrase %q", tt.phrase)
	}
}

func TestResolveRejectsFuture(t *testing.T) {
	_, err := Resolve("2024-12-25", ref)
	var ue *UnresolvableDateError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "future dates are not supported", ue.Reason)
}

func TestResolveUnknownPhrase(t *testing.T) {
	for _, phrase := range []string{"banana", "sometime soon", "feb 30, 2024"} {
		_, err := Resolve(phrase, ref)
		var ue *UnresolvableDateError
		assert.ErrorAs(t, err, &ue, "phrase %q", phrase)
	}
}

func TestFindPhrases(t *testing.T) {
	phrases := FindPhrases("compare AAPL volume today vs yesterday")
	assert.Equal(t, []string{"today", "yesterday"}, phrases)

	phrases = FindPhrases("trades for 7203.T on march 3rd, 2024")
	assert.Equal(t, []string{"march 3rd, 2024"}, phrases)

	// "day before yesterday" must not also surface "yesterday".
	phrases = FindPhrases("volume day before yesterday")
	assert.Equal(t, []string{"day before yesterday"}, phrases)

	assert.Empty(t, FindPhrases("total volume for AAPL"))
	assert.Equal(t, "today", FindPhrase("what traded today"))
}
