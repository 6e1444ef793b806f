package reconcile

import (
	"regexp"
	"strconv"
	"strings"
)

// AmountToken is a monetary amount candidate found in recognized text.
// Cents is the value normalized to integer minor units.
type AmountToken struct {
	Raw   string
	Cents int64
	Start int
	End   int
}

// LabelKind is the closed set of summary-field labels the lexer recognizes.
type LabelKind int

const (
	LabelSubtotal LabelKind = iota
	LabelDiscount
	LabelShipping
	LabelFees
	LabelTax
	LabelTotal
)

func (k LabelKind) String() string {
	switch k {
	case LabelSubtotal:
		return "subtotal"
	case LabelDiscount:
		return "discount"
	case LabelShipping:
		return "shipping"
	case LabelFees:
		return "fees"
	case LabelTax:
		return "tax"
	case LabelTotal:
		return "total"
	}
	return "unknown"
}

// LabelToken is a summary-field label occurrence with its character span.
type LabelToken struct {
	Kind  LabelKind
	Start int
	End   int
}

// Amount candidates need an explicit currency symbol or a decimal separator
// with 1-2 trailing digits. Bare integer runs (invoice numbers, IBAN
// fragments, postal codes) never qualify. The gap after the symbol stays on
// the same line: a symbol at the end of one line must not qualify an
// integer run on the next.
var amountPattern = regexp.MustCompile(
	`[$€£][ \t]*[-+]?\d(?:[\d.,]*\d)?|[-+]?\d(?:[\d.,]*\d)?[.,]\d{1,2}\b`,
)

// Summary labels, optional trailing colon. OCR from images often drops the
// colon. Longer alternatives come first so "Subtotal" and "Sales Tax" win
// over the bare "Total"/"Tax" at the same position. Only Discount absorbs a
// trailing parenthetical ("Discount (20%)"); for every other label a
// parenthesized figure is the amount itself and must stay outside the label
// span so the associator can bind it.
var labelPattern = regexp.MustCompile(
	`(?i)\b(discount)(?:\s*\([^)]*\))?\s*:?|\b(sub-?total|balance due|sales tax|total|shipping|freight|delivery|handling|fees|charge|tax|vat|gst|iva|duty)\b\s*:?`,
)

// "Tax" immediately followed by "Id" is an identifier label, not a summary
// field. RE2 has no lookahead, so the exclusion is a post-filter.
var taxIDSuffix = regexp.MustCompile(`(?i)^\s+id\b`)

var labelKinds = map[string]LabelKind{
	"subtotal":    LabelSubtotal,
	"sub-total":   LabelSubtotal,
	"discount":    LabelDiscount,
	"shipping":    LabelShipping,
	"freight":     LabelShipping,
	"delivery":    LabelShipping,
	"handling":    LabelShipping,
	"fees":        LabelFees,
	"charge":      LabelFees,
	"sales tax":   LabelTax,
	"tax":         LabelTax,
	"vat":         LabelTax,
	"gst":         LabelTax,
	"iva":         LabelTax,
	"duty":        LabelTax,
	"total":       LabelTotal,
	"balance due": LabelTotal,
}

func (e *Engine) lexAmounts(text string) []AmountToken {
	var tokens []AmountToken
	for _, loc := range amountPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if isPercentage(text, loc[0], loc[1]) {
			continue
		}
		cents, ok := parseAmountCents(raw)
		if !ok {
			continue
		}
		tokens = append(tokens, AmountToken{Raw: raw, Cents: cents, Start: loc[0], End: loc[1]})
	}
	return tokens
}

func (e *Engine) lexLabels(text string) []LabelToken {
	var tokens []LabelToken
	for _, m := range labelPattern.FindAllStringSubmatchIndex(text, -1) {
		wordStart, wordEnd := m[2], m[3]
		if wordStart < 0 {
			wordStart, wordEnd = m[4], m[5]
		}
		word := strings.ToLower(text[wordStart:wordEnd])
		kind, ok := labelKinds[word]
		if !ok {
			continue
		}
		if kind == LabelTax && word == "tax" && taxIDSuffix.MatchString(text[wordEnd:]) {
			continue
		}
		tokens = append(tokens, LabelToken{Kind: kind, Start: m[0], End: m[1]})
	}
	return tokens
}

// isPercentage excludes percentage figures from amount candidacy: a "%"
// suffix, or a closing paren when the token sits inside a discount
// parenthetical such as "Discount (20%)".
func isPercentage(text string, start, end int) bool {
	after := strings.TrimLeft(text[end:min(end+3, len(text))], " \t")
	if strings.HasPrefix(after, "%") {
		return true
	}
	if strings.HasPrefix(after, ")") {
		before := strings.ToLower(text[max(0, start-15):start])
		return strings.Contains(before, "discount")
	}
	return false
}

// parseAmountCents converts locale decimal and currency notation to integer
// cents. A comma followed by 1-2 trailing digits is a decimal separator;
// anything else is a thousands separator.
func parseAmountCents(raw string) (int64, bool) {
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", " ", "", "\t", "", " ", "").Replace(raw)
	neg := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimLeft(cleaned, "+-")
	if cleaned == "" {
		return 0, false
	}

	commas := strings.Count(cleaned, ",")
	dots := strings.Count(cleaned, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// European style: dots group thousands, comma is the decimal.
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case commas > 1:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case dots > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	case commas == 1:
		if trailingDigits(cleaned, ',') <= 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case dots == 1:
		if trailingDigits(cleaned, '.') > 2 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	intPart, fracPart, hasFrac := strings.Cut(cleaned, ".")
	var cents int64
	if intPart != "" {
		whole, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, false
		}
		cents = whole * 100
	}
	if hasFrac && fracPart != "" {
		if len(fracPart) == 1 {
			fracPart += "0"
		}
		frac, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, false
		}
		cents += frac
	}
	if neg {
		cents = -cents
	}
	return cents, true
}

func trailingDigits(s string, sep byte) int {
	return len(s) - strings.IndexByte(s, sep) - 1
}
