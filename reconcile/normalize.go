package reconcile

import (
	"fmt"
	"strings"

	"invoicepipe/dto"
)

// discountKeywords is the multilingual evidence list for the discount guard.
var discountKeywords = []string{"discount", "rebate", "descuento"}

// solveInvariant enforces total = subtotal + tax - discount over the header.
// Exactly one missing field is solved algebraically; with two or more
// missing, one equation cannot resolve multiple unknowns and the missing
// fields settle at zero. Negative results clamp to zero. After this stage
// every header amount is concrete.
func solveInvariant(inv *dto.InvoiceHeader) {
	if inv.DiscountCents < 0 {
		inv.DiscountCents = 0
	}
	discount := inv.DiscountCents

	missing := 0
	for _, p := range []*int64{inv.SubtotalCents, inv.TaxCents, inv.TotalCents} {
		if p == nil {
			missing++
		}
	}

	if missing == 1 {
		switch {
		case inv.SubtotalCents == nil:
			inv.SubtotalCents = dto.CentsPtr(*inv.TotalCents - *inv.TaxCents + discount)
		case inv.TaxCents == nil:
			inv.TaxCents = dto.CentsPtr(*inv.TotalCents - *inv.SubtotalCents + discount)
		default:
			inv.TotalCents = dto.CentsPtr(*inv.SubtotalCents + *inv.TaxCents - discount)
		}
	} else {
		if inv.SubtotalCents == nil {
			inv.SubtotalCents = dto.CentsPtr(0)
		}
		if inv.TaxCents == nil {
			inv.TaxCents = dto.CentsPtr(0)
		}
		if inv.TotalCents == nil {
			inv.TotalCents = dto.CentsPtr(0)
		}
	}

	for _, p := range []*int64{inv.SubtotalCents, inv.TaxCents, inv.TotalCents} {
		if *p < 0 {
			*p = 0
		}
	}
}

// guardDiscount forces the discount to zero when the recognized text carries
// no discount keyword at all: absent textual evidence, a nonzero draft
// discount is a mis-associated numeric token, not a probabilistic guess.
// The stage then re-establishes the header identity, since zeroing a bogus
// discount shifts it.
func (e *Engine) guardDiscount(text string, inv *dto.InvoiceHeader, locked map[Field]bool, warnings *[]string) {
	if !locked[FieldDiscount] && !hasDiscountEvidence(text) {
		inv.DiscountCents = 0
		locked[FieldDiscount] = true
	}
	e.enforceInvariant(inv, locked, warnings)
}

func hasDiscountEvidence(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range discountKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// enforceInvariant restores total = subtotal + tax - discount when a prior
// stage has shifted one side of it. The least trusted field absorbs the
// difference: an unlocked discount first, then the first unlocked field in
// the order total, tax, subtotal. When every field is locked the record is
// left alone and the disagreement surfaces as a warning.
func (e *Engine) enforceInvariant(inv *dto.InvoiceHeader, locked map[Field]bool, warnings *[]string) {
	subtotal := *inv.SubtotalCents
	tax := *inv.TaxCents
	total := *inv.TotalCents
	if subtotal+tax-inv.DiscountCents == total {
		return
	}

	if !locked[FieldDiscount] {
		if d := subtotal + tax - total; d >= 0 {
			inv.DiscountCents = d
			return
		}
	}
	switch {
	case !locked[FieldTotal]:
		inv.TotalCents = dto.CentsPtr(clampCents(subtotal + tax - inv.DiscountCents))
	case !locked[FieldTax]:
		inv.TaxCents = dto.CentsPtr(clampCents(total - subtotal + inv.DiscountCents))
	case !locked[FieldSubtotal]:
		inv.SubtotalCents = dto.CentsPtr(clampCents(total - tax + inv.DiscountCents))
	default:
		*warnings = append(*warnings, fmt.Sprintf(
			"invoice totals disagree: subtotal %d + tax %d - discount %d != total %d",
			subtotal, tax, inv.DiscountCents, total))
	}
}

func clampCents(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
