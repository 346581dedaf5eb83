// Package markets maps international instrument suffixes to market
// names and currency symbols. Instrument codes look like "005930.KS"
// or "BHP.AX"; plain tickers without a suffix are treated as local.
package markets

import (
	"regexp"
	"strings"
)

// Info describes the market an instrument trades on.
type Info struct {
	Suffix   string
	Market   string
	BaseCode string
}

var suffixMarkets = map[string]string{
	".HK":     "Hong Kong",
	".KS":     "Korea (KOSPI)",
	".KQ":     "Korea (KOSDAQ)",
	".SS":     "China (Shanghai)",
	".SH":     "China (Shanghai)",
	".SZ":     "China (Shenzhen)",
	".ZK":     "China (Shenzhen)",
	".T":      "Japan (Tokyo)",
	".TO":     "Japan (Tokyo)",
	".AX":     "Australia (ASX)",
	".BK":     "Thailand (SET)",
	".TB":     "Thailand (SET)",
	".KL":     "Malaysia (KLSE)",
	".NS":     "India (NSE)",
	".BO":     "India (BSE)",
	".SI":     "Singapore (SGX)",
	".TW":     "Taiwan",
	".TWO":    "Taiwan (OTC)",
	".JK":     "Indonesia (IDX)",
	".PS":     "Philippines (PSE)",
	".HN":     "Vietnam (HNX)",
	".HP":     "Vietnam (HOSE)",
	".US":     "United States",
	".NASDAQ": "United States (NASDAQ)",
	".NYSE":   "United States (NYSE)",
}

var marketCurrencies = map[string]string{
	"Hong Kong":               "HK$",
	"Korea (KOSPI)":           "₩",
	"Korea (KOSDAQ)":          "₩",
	"China (Shanghai)":        "¥",
	"China (Shenzhen)":        "¥",
	"Japan (Tokyo)":           "¥",
	"Australia (ASX)":         "A$",
	"Thailand (SET)":          "฿",
	"Malaysia (KLSE)":         "RM",
	"India (NSE)":             "₹",
	"India (BSE)":             "₹",
	"Singapore (SGX)":         "S$",
	"Taiwan":                  "NT$",
	"Taiwan (OTC)":            "NT$",
	"Indonesia (IDX)":         "Rp",
	"Philippines (PSE)":       "₱",
	"Vietnam (HNX)":           "₫",
	"Vietnam (HOSE)":          "₫",
	"United States":           "$",
	"United States (NASDAQ)":  "$",
	"United States (NYSE)":    "$",
}

// Country names and exchange aliases that appear in questions, mapped
// to the suffixes they cover. Keys are lowercase.
var marketAliases = map[string][]string{
	"korea":      {".KS", ".KQ"},
	"korean":     {".KS", ".KQ"},
	"kospi":      {".KS"},
	"kosdaq":     {".KQ"},
	"china":      {".SS", ".SH", ".SZ", ".ZK"},
	"chinese":    {".SS", ".SH", ".SZ", ".ZK"},
	"shanghai":   {".SS", ".SH"},
	"shenzhen":   {".SZ", ".ZK"},
	"japan":      {".T", ".TO"},
	"japanese":   {".T", ".TO"},
	"tokyo":      {".T", ".TO"},
	"australia":  {".AX"},
	"australian": {".AX"},
	"thailand":   {".BK", ".TB"},
	"thai":       {".BK", ".TB"},
	"malaysia":   {".KL"},
	"malaysian":  {".KL"},
	"india":      {".NS", ".BO"},
	"indian":     {".NS", ".BO"},
	"hong kong":  {".HK"},
	"singapore":  {".SI"},
	"taiwan":     {".TW", ".TWO"},
}

var plainTicker = regexp.MustCompile(`^[A-Z]{1,5}$`)
var numericCode = regexp.MustCompile(`^[0-9]+$`)

// Lookup returns market info for an instrument code. Unknown suffixes
// resolve to a local-market placeholder, never an error.
func Lookup(code string) Info {
	upper := strings.ToUpper(code)
	// Longest suffix first so ".TWO" wins over ".TO" endings.
	best := ""
	for suffix := range suffixMarkets {
		if strings.HasSuffix(upper, suffix) && len(suffix) > len(best) {
			best = suffix
		}
	}
	if best != "" {
		return Info{
			Suffix:   best,
			Market:   suffixMarkets[best],
			BaseCode: strings.TrimSuffix(upper, best),
		}
	}
	return Info{Market: "Local Market", BaseCode: upper}
}

// Currency returns the currency symbol for a market name, "$" when
// unknown.
func Currency(market string) string {
	if c, ok := marketCurrencies[market]; ok {
		return c
	}
	return "$"
}

// CurrencyFor returns the currency symbol for an instrument code.
func CurrencyFor(code string) string {
	if code == "" {
		return "$"
	}
	return Currency(Lookup(code).Market)
}

// Normalize upper-cases an instrument code.
func Normalize(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// ValidSymbol reports whether s is a plausible instrument: a plain
// 1-5 letter ticker, a bare numeric code, or a code with a known
// market suffix.
func ValidSymbol(s string) bool {
	if s == "" {
		return false
	}
	upper := strings.ToUpper(s)
	if plainTicker.MatchString(upper) || numericCode.MatchString(upper) {
		return true
	}
	for suffix := range suffixMarkets {
		if strings.HasSuffix(upper, suffix) && len(upper) > len(suffix) {
			return true
		}
	}
	return false
}

// SuffixesFor returns the market suffixes a country/exchange alias in
// a question refers to, or nil when the alias is unknown.
func SuffixesFor(alias string) []string {
	return marketAliases[strings.ToLower(strings.TrimSpace(alias))]
}

// Aliases returns the recognized alias words, for keyword scanning.
func Aliases() []string {
	out := make([]string, 0, len(marketAliases))
	for k := range marketAliases {
		out = append(out, k)
	}
	return out
}
