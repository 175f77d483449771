// Package extract recovers the invoice date and total from raw OCR text.
//
// Each field is described by an ordered list of rules. Rules are tried in
// order and the first one that finds something wins; results from different
// rules are never combined.
package extract

// Result is the outcome of a single rule or rule list
type Result struct {
	Value string
	Found bool
}

// Match wraps a found value
func Match(value string) Result {
	return Result{Value: value, Found: true}
}

// Miss is the not-found result. A miss is a normal outcome, not an error.
var Miss = Result{}

// Get returns the value and whether it was found
func (r Result) Get() (string, bool) {
	return r.Value, r.Found
}

// Rule inspects text and reports what it found
type Rule func(text string) Result

// First evaluates rules in order and returns the first match
func First(text string, rules []Rule) Result {
	for _, rule := range rules {
		if res := rule(text); res.Found {
			return res
		}
	}
	return Miss
}

// Fields holds both extracted fields of one invoice
type Fields struct {
	Date  Result
	Total Result
}

// Complete reports whether both the date and the total were found
func (f Fields) Complete() bool {
	return f.Date.Found && f.Total.Found
}

// All runs the date and total extractors over text
func All(text string) Fields {
	return Fields{
		Date:  Date(text),
		Total: Total(text),
	}
}
