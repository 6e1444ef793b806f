// Package category assigns a spend category to invoice line items using
// keyword rules, as a deterministic fallback when the LLM leaves an item
// uncategorized.
package category

import "strings"

// Other is the fallback category when nothing matches.
const Other = "Other"

// Classify returns the best-matching category for a line item description,
// or the empty string when no rule hits. Vendor-level hints win over
// per-item keywords.
func Classify(description, vendorName string) string {
	desc := normalize(description)
	vendor := normalize(vendorName)

	for hint, cat := range vendorHints {
		if vendor != "" && strings.Contains(vendor, hint) {
			return cat
		}
	}

	words := strings.Fields(desc)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	best := ""
	bestHits := 0
	for _, cat := range categoryOrder {
		hits := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(kw, " ") {
				if strings.Contains(desc, kw) {
					hits++
				}
			} else if wordSet[kw] {
				hits++
			}
		}
		if hits > bestHits {
			best = cat
			bestHits = hits
		}
	}
	return best
}

// normalize lowercases and folds the accents OCR most commonly introduces,
// so Spanish-language line items still match.
func normalize(text string) string {
	lower := strings.ToLower(text)
	return strings.NewReplacer(
		"á", "a",
		"é", "e",
		"í", "i",
		"ó", "o",
		"ú", "u",
	).Replace(lower)
}
