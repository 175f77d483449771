package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// amountSuffix follows a keyword: a gap without digits or '$', an optional
// '$', then the amount with optional cents.
const amountSuffix = `[^0-9$]*\$?\s*([0-9]+(?:\.[0-9]{2})?)`

// Keywords are matched on word boundaries where letters and digits of any
// script count as word characters, so "étotal" does not contain "total".
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `[^\p{L}\p{N}_]`
)

var (
	totalKeywords = []string{
		`total`,
		`grand\s+total`,
		`amount\s+due`,
		`balance\s+due`,
		`invoice\s+total`,
	}

	subtotalKeywords = []string{
		`subtotal`,
		`sub\s+total`,
	}

	decimalAmount = regexp.MustCompile(`\$?\s*([0-9]+\.[0-9]{2})`)
)

// TotalRules lists the total rules in priority order. They expect text
// already passed through normalizeTotalText.
var TotalRules = []Rule{
	keywordRule(totalKeywords),
	keywordRule(subtotalKeywords),
	largestAmountRule,
}

// Total finds the invoice total. Explicit total keywords win over subtotal
// keywords, which win over the largest decimal amount anywhere in the text.
func Total(text string) Result {
	return First(normalizeTotalText(text), TotalRules)
}

// normalizeTotalText lower-cases and turns every comma into a period. This
// misreads thousands separators ("1,234.56"), which is accepted behavior.
func normalizeTotalText(text string) string {
	return strings.ReplaceAll(strings.ToLower(text), ",", ".")
}

// keywordRule tries each keyword in order and returns the amount after the
// first keyword that has one.
func keywordRule(keywords []string) Rule {
	patterns := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		patterns[i] = regexp.MustCompile(wordStart + kw + wordEnd + amountSuffix)
	}

	return func(text string) Result {
		for _, p := range patterns {
			if m := p.FindStringSubmatch(text); m != nil {
				return Match(m[1])
			}
		}
		return Miss
	}
}

// largestAmountRule returns the numerically largest digits.DD amount. On ties
// the earliest occurrence is kept.
func largestAmountRule(text string) Result {
	var (
		best      string
		bestValue float64
	)
	for _, m := range decimalAmount.FindAllStringSubmatch(text, -1) {
		// Amounts too large for a float64 parse as +Inf and win
		v, _ := strconv.ParseFloat(m[1], 64)
		if best == "" || v > bestValue {
			best, bestValue = m[1], v
		}
	}
	if best == "" {
		return Miss
	}
	return Match(best)
}
