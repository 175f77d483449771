package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const monthNames = "january|february|march|april|may|june|july|august|september|october|november|december"

var (
	// D.M.Y, D/M/Y or D-M-Y with one separator used throughout and a 2 or 4
	// digit year. Digits may come from any script.
	numericDate = regexp.MustCompile(
		`\p{Nd}{1,2}\.\p{Nd}{1,2}\.(?:\p{Nd}{4}|\p{Nd}{2})` +
			`|\p{Nd}{1,2}/\p{Nd}{1,2}/(?:\p{Nd}{4}|\p{Nd}{2})` +
			`|\p{Nd}{1,2}-\p{Nd}{1,2}-(?:\p{Nd}{4}|\p{Nd}{2})`)

	textualDate = regexp.MustCompile(`(?:` + monthNames + `)\s+\p{Nd}{1,2}(?:,\s*\p{Nd}{4})?`)
)

// DateRules lists the date rules in priority order
var DateRules = []Rule{
	numericDateRule,
	textualDateRule,
}

// Date returns the first numeric date in text, or failing that the first
// "Month D[, YYYY]" date title-cased. Dates are not calendar validated.
func Date(text string) Result {
	return First(text, DateRules)
}

func numericDateRule(text string) Result {
	if m := numericDate.FindString(text); m != "" {
		return Match(m)
	}
	return Miss
}

func textualDateRule(text string) Result {
	if m := textualDate.FindString(strings.ToLower(text)); m != "" {
		// Casers carry state, so each call gets its own
		return Match(cases.Title(language.English).String(m))
	}
	return Miss
}
