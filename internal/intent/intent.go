// Package intent maps a free-text question to a structured
// QueryIntent. A deterministic keyword rule table runs first; only
// when it cannot reach sufficient confidence is the external
// language-understanding fallback consulted, behind a bounded
// timeout, and its guess validated against the same schema.
package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock-trading-chatbot/internal/dateparse"
	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/logger"
	"stock-trading-chatbot/internal/markets"
	"stock-trading-chatbot/internal/trace"
	"stock-trading-chatbot/internal/types"
)

// UnclassifiableQuestionError reports that neither the rule table nor
// the fallback produced a valid intent. Surfaced to the user as a
// clarification request, never a crash.
type UnclassifiableQuestionError struct {
	Question string
}

func (e *UnclassifiableQuestionError) Error() string {
	return fmt.Sprintf("cannot classify question %q", e.Question)
}

// FallbackSchema is the short schema description sent to the
// language-understanding collaborator.
const FallbackSchema = `{"intent":"AGGREGATE|LOOKUP|COMPARE|LIST","symbol":"instrument like AAPL or 005930.KS, optional","metric":"VOLUME|NOTIONAL|PRICE|TRADES|PROFIT, optional","date_phrase":"temporal phrase like yesterday or 2024-03-03, optional","refused":"true when the question is not about trading data"}`

type Classifier struct {
	fallback interfaces.Fallback
	timeout  time.Duration
}

// NewClassifier builds a classifier delegating to fallback when the
// rule table does not match with sufficient confidence.
func NewClassifier(fallback interfaces.Fallback, timeout time.Duration) *Classifier {
	return &Classifier{fallback: fallback, timeout: timeout}
}

var metricKeywords = []struct {
	metric types.Metric
	words  []string
}{
	// Order matters: "how many trades" must win over "how many shares".
	{types.MetricTrades, []string{"how many trades", "number of trades", "trade count", "count of trades"}},
	{types.MetricNotional, []string{"notional", "traded amount", "trading value", "total value", "trade value", "value traded", "amount traded"}},
	{types.MetricProfit, []string{"profit", "pnl", "p&l", "realized gain", "net gain"}},
	{types.MetricVolume, []string{"volume", "shares traded", "how many shares", "number of shares", "quantity"}},
	{types.MetricPrice, []string{"price", "cost", "how much"}},
}

var (
	dottedSymbolPattern = regexp.MustCompile(`\b([A-Za-z0-9]{1,6}\.[A-Za-z]{1,6})\b`)
	plainSymbolPattern  = regexp.MustCompile(`\b([A-Z]{1,5})\b`)
	priceAbovePattern   = regexp.MustCompile(`(?:above|over|more than)\s*\$?(\d+(?:\.\d+)?)`)
	priceBelowPattern   = regexp.MustCompile(`(?:below|under|less than)\s*\$?(\d+(?:\.\d+)?)`)
)

// Uppercase words that look like tickers but never are.
var symbolStopwords = map[string]bool{
	"A": true, "I": true, "VS": true, "BUY": true, "SELL": true,
	"CSV": true, "OK": true, "TOTAL": true, "SHOW": true, "LIST": true,
	"WHAT": true, "HOW": true, "AND": true, "FOR": true, "THE": true,
	"ON": true, "OF": true, "TO": true, "ME": true, "ALL": true, "PNL": true,
	"P": true, "L": true,
}

// Classify maps a question to a QueryIntent, consulting the fallback
// only when the rule path lacks confidence.
func (c *Classifier) Classify(ctx context.Context, question string) (types.QueryIntent, error) {
	ctx, span := trace.StartSpan(ctx, "intent.Classify")
	defer span.End()

	if intent, ok := c.classifyByRules(question); ok {
		logger.Debug(ctx, "Rule-based classification matched",
			"intent", string(intent.Kind), "symbol", intent.Symbol)
		return intent, nil
	}

	return c.classifyByFallback(ctx, question)
}

// classifyByRules applies the deterministic keyword table. The second
// return value is the confidence gate: true only when at least one
// metric keyword or a symbol was found (or the intent needs neither).
func (c *Classifier) classifyByRules(question string) (types.QueryIntent, bool) {
	lower := strings.ToLower(question)
	symbol := ExtractSymbol(question)
	phrases := dateparse.FindPhrases(question)
	metric, hasMetric := detectMetric(lower)
	market := detectMarket(lower)

	datePhrase := ""
	if len(phrases) > 0 {
		datePhrase = phrases[0]
	}

	// Conversational intents need no parameters.
	switch {
	case containsWord(lower, "help") || strings.Contains(lower, "what can you do") || strings.Contains(lower, "how to use"):
		return types.QueryIntent{Kind: types.IntentHelp}, true
	case containsWord(lower, "hello") || containsWord(lower, "hi") || containsWord(lower, "hey") || containsWord(lower, "greetings"):
		return types.QueryIntent{Kind: types.IntentGreeting}, true
	case strings.Contains(lower, "available dates") || strings.Contains(lower, "which dates") ||
		strings.Contains(lower, "what data do you have") || strings.Contains(lower, "what trading data"):
		return types.QueryIntent{Kind: types.IntentDates}, true
	}

	// Compare: needs two date expressions.
	if strings.Contains(lower, "compare") || containsWord(lower, "vs") || containsWord(lower, "versus") {
		if len(phrases) >= 2 {
			m := metric
			if !hasMetric {
				m = types.MetricVolume
			}
			return types.QueryIntent{
				Kind:           types.IntentCompare,
				Metric:         m,
				Symbol:         symbol,
				ComparePhraseA: phrases[0],
				ComparePhraseB: phrases[1],
			}, hasMetric || symbol != ""
		}
		return types.QueryIntent{}, false
	}

	// Market summary / per-market breakdown.
	if strings.Contains(lower, "summary") || strings.Contains(lower, "overview") || strings.Contains(lower, "all markets") {
		m := metric
		if !hasMetric {
			m = types.MetricNotional
		}
		return types.QueryIntent{
			Kind:       types.IntentAggregate,
			Metric:     m,
			GroupBy:    types.GroupByMarket,
			Market:     market,
			DatePhrase: datePhrase,
		}, true
	}

	// Country/exchange wording without explicit summary keywords, like
	// "Korean stocks today", ranks that market's symbols.
	if market != "" && symbol == "" {
		m := metric
		if !hasMetric {
			m = types.MetricNotional
		}
		return types.QueryIntent{
			Kind:       types.IntentAggregate,
			Metric:     m,
			GroupBy:    types.GroupBySymbol,
			Market:     market,
			DatePhrase: datePhrase,
		}, true
	}

	// Most active symbol ranking.
	if strings.Contains(lower, "most active") || strings.Contains(lower, "most traded") {
		m := metric
		if !hasMetric {
			m = types.MetricVolume
		}
		return types.QueryIntent{
			Kind:       types.IntentAggregate,
			Metric:     m,
			GroupBy:    types.GroupBySymbol,
			Market:     market,
			DatePhrase: datePhrase,
		}, true
	}

	// List: show/list plus residual filters.
	if containsWord(lower, "show") || containsWord(lower, "list") || containsWord(lower, "display") {
		filter := types.ListFilter{Symbol: symbol}
		if containsAny(lower, "buys", "bought", "buy trades", "buy orders") {
			filter.Side = types.SideBuy
		} else if containsAny(lower, "sells", "sold", "sell trades", "sell orders") {
			filter.Side = types.SideSell
		}
		if m := priceAbovePattern.FindStringSubmatch(lower); m != nil {
			v, _ := decimal.NewFromString(m[1])
			filter.PriceMin = &v
		}
		if m := priceBelowPattern.FindStringSubmatch(lower); m != nil {
			v, _ := decimal.NewFromString(m[1])
			filter.PriceMax = &v
		}
		confident := symbol != "" || filter.Side != "" || filter.PriceMin != nil ||
			filter.PriceMax != nil || containsAny(lower, "trades", "trade", "executions")
		return types.QueryIntent{
			Kind:       types.IntentList,
			Symbol:     symbol,
			Market:     market,
			Filter:     filter,
			DatePhrase: datePhrase,
		}, confident
	}

	// Aggregate: a metric keyword, or total/average/sum wording.
	if hasMetric || containsAny(lower, "total", "average", "sum of") {
		m := metric
		if !hasMetric {
			m = types.MetricNotional
		}
		return types.QueryIntent{
			Kind:       types.IntentAggregate,
			Metric:     m,
			Symbol:     symbol,
			Market:     market,
			DatePhrase: datePhrase,
		}, hasMetric || symbol != ""
	}

	// Lookup: a symbol with a date and no metric wording.
	if symbol != "" && datePhrase != "" {
		return types.QueryIntent{
			Kind:       types.IntentLookup,
			Symbol:     symbol,
			DatePhrase: datePhrase,
		}, true
	}

	return types.QueryIntent{}, false
}

func (c *Classifier) classifyByFallback(ctx context.Context, question string) (types.QueryIntent, error) {
	if c.fallback == nil {
		return types.QueryIntent{}, &UnclassifiableQuestionError{Question: question}
	}

	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	guess, err := c.fallback.Classify(fctx, question, FallbackSchema)
	if err != nil {
		// Collaborator unreachable or timed out; degrade to
		// rule-based-only behavior.
		logger.Warn(ctx, "Fallback classification unavailable", "error", err)
		return types.QueryIntent{}, &UnclassifiableQuestionError{Question: question}
	}
	if guess.Refused {
		return types.QueryIntent{}, &UnclassifiableQuestionError{Question: question}
	}

	intent, ok := validateGuess(guess, question)
	if !ok {
		logger.Warn(ctx, "Fallback guess failed validation",
			"intent", guess.Intent, "symbol", guess.Symbol, "metric", guess.Metric)
		return types.QueryIntent{}, &UnclassifiableQuestionError{Question: question}
	}
	return intent, nil
}

// validateGuess checks a fallback guess against the intent schema and
// converts it to a QueryIntent.
func validateGuess(g types.IntentGuess, question string) (types.QueryIntent, bool) {
	kind := types.IntentKind(strings.ToUpper(g.Intent))
	switch kind {
	case types.IntentAggregate, types.IntentLookup, types.IntentCompare, types.IntentList:
	default:
		return types.QueryIntent{}, false
	}

	metric := types.Metric(strings.ToUpper(g.Metric))
	if g.Metric != "" {
		switch metric {
		case types.MetricVolume, types.MetricNotional, types.MetricPrice, types.MetricTrades, types.MetricProfit:
		default:
			return types.QueryIntent{}, false
		}
	}

	symbol := markets.Normalize(g.Symbol)
	if symbol != "" && !markets.ValidSymbol(symbol) {
		return types.QueryIntent{}, false
	}

	datePhrase := g.DatePhrase
	if datePhrase == "" {
		datePhrase = dateparse.FindPhrase(question)
	}

	intent := types.QueryIntent{
		Kind:       kind,
		Metric:     metric,
		Symbol:     symbol,
		DatePhrase: datePhrase,
	}
	switch kind {
	case types.IntentAggregate, types.IntentCompare:
		if metric == "" {
			intent.Metric = types.MetricNotional
		}
		if kind == types.IntentCompare {
			phrases := dateparse.FindPhrases(question)
			if len(phrases) < 2 {
				return types.QueryIntent{}, false
			}
			intent.ComparePhraseA = phrases[0]
			intent.ComparePhraseB = phrases[1]
		}
	case types.IntentLookup:
		if symbol == "" {
			return types.QueryIntent{}, false
		}
	case types.IntentList:
		intent.Filter = types.ListFilter{Symbol: symbol}
	}
	return intent, true
}

// ExtractSymbol pulls an instrument code out of a question: either a
// suffixed international code like 005930.KS, or a plain uppercase
// 1-5 letter ticker that is not a stopword.
func ExtractSymbol(question string) string {
	for _, m := range dottedSymbolPattern.FindAllStringSubmatch(question, -1) {
		candidate := markets.Normalize(m[1])
		if markets.ValidSymbol(candidate) && markets.Lookup(candidate).Suffix != "" {
			return candidate
		}
	}
	for _, m := range plainSymbolPattern.FindAllStringSubmatch(question, -1) {
		if symbolStopwords[m[1]] {
			continue
		}
		return m[1]
	}
	return ""
}

// detectMarket finds a country/exchange alias in the question, picking
// the longest match so "hong kong" beats nothing shorter.
func detectMarket(lower string) string {
	best := ""
	for _, alias := range markets.Aliases() {
		if strings.Contains(lower, alias) && len(alias) > len(best) {
			best = alias
		}
	}
	return best
}

func detectMetric(lower string) (types.Metric, bool) {
	for _, mk := range metricKeywords {
		for _, w := range mk.words {
			if strings.Contains(lower, w) {
				return mk.metric, true
			}
		}
	}
	return "", false
}

func containsWord(s, word string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(s)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
