// Package extract recovers typed expense fields from unstructured receipt
// text. Every function here is pure and total: malformed input yields a
// "not found" result, never an error.
package extract

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// AmountResult carries the resolved amount or an explicit not-found tag.
type AmountResult struct {
	Value decimal.Decimal
	Found bool

	// LowConfidence is set when only the weakest pattern class (a bare
	// decimal with two fractional digits) produced the value.
	LowConfidence bool
}

// Ordered highest-confidence first. The first class with at least one
// positive match wins; later classes are never consulted.
var amountClasses = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:total|amount)[:\s]*\$?(-?[0-9]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`\$(-?[0-9]+\.[0-9]{2})`),
	regexp.MustCompile(`(-?[0-9]+\.[0-9]{2})\b`),
}

// Amount scans text for a monetary value. Within a pattern class the
// largest positive candidate wins: receipts list line items before the
// total, and the total is the largest figure.
func Amount(text string) AmountResult {
	for class, re := range amountClasses {
		var best decimal.Decimal
		found := false

		for _, match := range re.FindAllStringSubmatch(text, -1) {
			value, err := decimal.NewFromString(match[1])
			if err != nil || !value.IsPositive() {
				continue
			}
			if !found || value.GreaterThan(best) {
				best = value
				found = true
			}
		}

		if found {
			return AmountResult{
				Value:         best,
				Found:         true,
				LowConfidence: class == len(amountClasses)-1,
			}
		}
	}
	return AmountResult{}
}
