// Package taxonomy classifies free-text service descriptions into a
// two-level category/subtype taxonomy by ordered keyword rules.
package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Classification is the two-level result for one text.
type Classification struct {
	L1 string `json:"category_l1"`
	L2 string `json:"category_l2"`
}

// Classify maps text to its category and subtype. It never fails.
func Classify(text string) Classification {
	folded := Fold(text)
	return Classification{
		L1: match(l1Rules, folded, FallbackL1),
		L2: match(l2Rules, folded, FallbackL2),
	}
}

func ClassifyL1(text string) string { return match(l1Rules, Fold(text), FallbackL1) }

func ClassifyL2(text string) string { return match(l2Rules, Fold(text), FallbackL2) }

// Fold lowercases s and strips combining marks, so "Elétrica" becomes "eletrica".
func Fold(s string) string {
	// Transformers carry state; build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func match(rules []Rule, folded, fallback string) string {
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(folded, kw) {
				return r.Category
			}
		}
	}
	return fallback
}
