package markets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	info := Lookup("005930.KS")
	assert.Equal(t, ".KS", info.Suffix)
	assert.Equal(t, "Korea (KOSPI)", info.Market)
	assert.Equal(t, "005930", info.BaseCode)

	info = Lookup("7203.T")
	assert.Equal(t, "Japan (Tokyo)", info.Market)

	// Longest suffix wins: 2330.TWO is Taiwan OTC, not a .TO ending.
	info = Lookup("2330.TWO")
	assert.Equal(t, ".TWO", info.Suffix)
	assert.Equal(t, "Taiwan (OTC)", info.Market)

	info = Lookup("AAPL")
	assert.Equal(t, "", info.Suffix)
	assert.Equal(t, "Local Market", info.Market)
}

func TestCurrencyFor(t *testing.T) {
	assert.Equal(t, "₩", CurrencyFor("005930.KS"))
	assert.Equal(t, "¥", CurrencyFor("7203.T"))
	assert.Equal(t, "HK$", CurrencyFor("0005.HK"))
	assert.Equal(t, "$", CurrencyFor("AAPL"))
	assert.Equal(t, "$", CurrencyFor(""))
}

func TestValidSymbol(t *testing.T) {
	for _, s := range []string{"AAPL", "A", "005930.KS", "7203.T", "0005.HK", "12345"} {
		assert.True(t, ValidSymbol(s), s)
	}
	for _, s := range []string{"", "TOOLONGG", "just words", ".KS"} {
		assert.False(t, ValidSymbol(s), s)
	}
}

func TestSuffixesFor(t *testing.T) {
	assert.ElementsMatch(t, []string{".KS", ".KQ"}, SuffixesFor("korean"))
	assert.ElementsMatch(t, []string{".HK"}, SuffixesFor("Hong Kong"))
	assert.Nil(t, SuffixesFor("mars"))
}
