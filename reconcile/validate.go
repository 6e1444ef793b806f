package reconcile

import (
	"fmt"
	"math"

	"invoicepipe/dto"
)

// scaleFactors are the uniform scale errors the validator can repair, in
// both directions (header inflated vs line items inflated). A factor-of-ten
// discrepancy is almost always a cents/whole-unit confusion upstream.
var scaleFactors = []int64{10, 100}

// validateConsistency compares the line item sum against the header. Within
// tolerance nothing happens. A clean power-of-ten ratio is repaired
// silently: the inflated side is scaled back down, keeping the other side as
// the reference. Any other disagreement is reported as a warning and the
// record is not mutated further.
func (e *Engine) validateConsistency(draft *dto.DraftInvoice, locked map[Field]bool, warnings *[]string) {
	if len(draft.Items) == 0 {
		return
	}
	var sum int64
	for _, item := range draft.Items {
		sum += item.LineTotalCents
	}
	if sum <= 0 {
		return
	}

	inv := &draft.Invoice
	ref := dto.Cents(inv.SubtotalCents)
	refName := "subtotal"
	if ref <= 0 && dto.Cents(inv.TotalCents) > 0 {
		ref = dto.Cents(inv.TotalCents)
		refName = "total"
	}

	tolerance := int64(math.Max(1, float64(ref)*e.opts.SumTolerance))
	diff := sum - ref
	if diff < 0 {
		diff = -diff
	}
	if diff <= tolerance {
		return
	}

	ratio := float64(ref) / float64(sum)
	for _, factor := range scaleFactors {
		f := float64(factor)
		if math.Abs(ratio-f) <= e.opts.ScaleTolerance*f {
			scaleHeader(inv, factor)
			e.enforceInvariant(inv, locked, warnings)
			return
		}
		if math.Abs(ratio-1/f) <= e.opts.ScaleTolerance/f {
			scaleItems(draft.Items, factor)
			return
		}
	}

	*warnings = append(*warnings, fmt.Sprintf(
		"line item sum %d does not match invoice %s %d (difference %d)",
		sum, refName, ref, diff))
}

func scaleHeader(inv *dto.InvoiceHeader, factor int64) {
	for _, p := range []*int64{inv.SubtotalCents, inv.TaxCents, inv.TotalCents} {
		*p = roundDiv(*p, factor)
	}
	inv.DiscountCents = roundDiv(inv.DiscountCents, factor)
}

func scaleItems(items []dto.LineItem, factor int64) {
	for i := range items {
		items[i].LineTotalCents = roundDiv(items[i].LineTotalCents, factor)
		if items[i].UnitPriceCents != nil {
			items[i].UnitPriceCents = dto.CentsPtr(roundDiv(*items[i].UnitPriceCents, factor))
		}
	}
}

func roundDiv(v, factor int64) int64 {
	if v < 0 {
		return 0
	}
	return (v + factor/2) / factor
}
