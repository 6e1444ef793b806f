package reconcile

import "invoicepipe/dto"

// correctPatterns repairs two systematic upstream misreadings of the summary
// section. Pattern A handles gross-total confusion: the model put the gross
// amount in both subtotal and total while the real subtotal landed in tax.
// Pattern B handles net-value duplication: the model copied the net amount
// into both subtotal and tax. A is checked first and claims the document
// whenever its trigger holds, so the two can never both apply. Fields locked
// by textual evidence are never overwritten.
func (e *Engine) correctPatterns(inv *dto.InvoiceHeader, locked map[Field]bool) {
	if inv.SubtotalCents == nil || inv.TaxCents == nil || inv.TotalCents == nil {
		return
	}
	subtotal := *inv.SubtotalCents
	tax := *inv.TaxCents
	total := *inv.TotalCents
	discount := inv.DiscountCents
	if discount < 0 {
		discount = 0
	}

	// Pattern A: subtotal duplicates the total and tax carries the real
	// subtotal.
	if float64(subtotal) >= 0.95*float64(total) && tax > 0 && tax < total {
		newSubtotal := tax
		newTax := total - newSubtotal + discount
		if newTax > 0 && newTax < newSubtotal &&
			!locked[FieldSubtotal] && !locked[FieldTax] {
			inv.SubtotalCents = dto.CentsPtr(newSubtotal)
			inv.TaxCents = dto.CentsPtr(newTax)
		}
		return
	}

	// Pattern B: tax duplicates the subtotal exactly; recompute tax from the
	// total. Subtotal stays as-is.
	if subtotal == tax && total > subtotal && subtotal > 0 {
		newTax := total - subtotal + discount
		if newTax > 0 && newTax < subtotal && !locked[FieldTax] {
			inv.TaxCents = dto.CentsPtr(newTax)
		}
	}
}
