package service

import (
	"regexp"
	"strings"

	"invoicepipe/category"
	"invoicepipe/dto"
)

// currencyToken matches currency symbols or decimal amounts inside free text.
// Used to decide whether a short line carries monetary data.
var currencyToken = regexp.MustCompile(`[$€£]|(\d+[.,]\d{1,2})`)

// normalizeItems fills item defaults: quantity 1 when missing, a rule-based
// category when the model left one out, and sequential indexes.
func normalizeItems(items []dto.LineItem, vendorName string) []dto.LineItem {
	out := make([]dto.LineItem, 0, len(items))
	for i, item := range items {
		if item.Qty == 0 {
			item.Qty = 1.0
		}
		if item.Category == "" {
			item.Category = category.Classify(item.Description, vendorName)
		}
		item.Idx = i + 1
		out = append(out, item)
	}
	return out
}

// mergeDescriptorItems folds descriptor-only rows (category, SKU, color)
// into the preceding real item and drops rows that duplicate summary
// figures such as tax or discount lines.
func mergeDescriptorItems(items []dto.LineItem, header *dto.InvoiceHeader) []dto.LineItem {
	if len(items) == 0 {
		return items
	}

	merged := make([]dto.LineItem, 0, len(items))
	for _, item := range items {
		if len(merged) == 0 {
			merged = append(merged, item)
			continue
		}
		if isSummaryOnlyItem(item, header) {
			continue
		}
		if isDescriptorLine(item, merged[len(merged)-1], header) {
			last := &merged[len(merged)-1]
			last.Description = strings.TrimSpace(last.Description + " " + item.Description)
			continue
		}
		merged = append(merged, item)
	}

	for i := range merged {
		merged[i].Idx = i + 1
	}
	return merged
}

// isSummaryOnlyItem flags rows that restate a summary figure instead of
// describing a purchased good.
func isSummaryOnlyItem(item dto.LineItem, header *dto.InvoiceHeader) bool {
	if item.Description == "" {
		return false
	}
	description := strings.ToLower(item.Description)
	keywords := []string{
		"discount", "shipping", "freight", "delivery", "handling",
		"fees", "tax", "vat", "gst", "iva", "duty", "balance", "subtotal",
	}
	for _, word := range keywords {
		if strings.Contains(description, word) {
			return true
		}
	}
	if item.LineTotalCents == header.DiscountCents && header.DiscountCents != 0 {
		return true
	}
	if header.TaxCents != nil && item.LineTotalCents == *header.TaxCents {
		return true
	}
	return false
}

// isDescriptorLine reports whether the row is a continuation of the previous
// item: no price of its own, default quantity, and a description free of
// monetary tokens.
func isDescriptorLine(item, previous dto.LineItem, header *dto.InvoiceHeader) bool {
	if item.Description == "" {
		return false
	}
	if item.UnitPriceCents != nil && *item.UnitPriceCents != 0 {
		return false
	}
	if item.Qty != 0 && item.Qty != 1.0 {
		return false
	}
	if currencyToken.MatchString(item.Description) {
		return false
	}

	switch item.LineTotalCents {
	case 0, previous.LineTotalCents, header.DiscountCents:
		return true
	}
	if header.TaxCents != nil && item.LineTotalCents == *header.TaxCents {
		return true
	}
	return false
}

// totalsConsistent checks total == subtotal + tax - discount within a
// 0.1 percent tolerance.
func totalsConsistent(header *dto.InvoiceHeader) bool {
	if header.SubtotalCents == nil || header.TaxCents == nil || header.TotalCents == nil {
		return true
	}
	total := *header.TotalCents
	tolerance := total / 1000
	if tolerance < 1 {
		tolerance = 1
	}
	expected := *header.SubtotalCents + *header.TaxCents - header.DiscountCents
	diff := expected - total
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// filterFalsePositiveWarnings drops LLM warnings about total mismatches when
// the reconciled totals actually agree.
func filterFalsePositiveWarnings(warnings []string, header *dto.InvoiceHeader) []string {
	if len(warnings) == 0 || !totalsConsistent(header) {
		return warnings
	}
	phrases := []string{
		"total and subtotal disagree",
		"total line items and invoice total disagree",
		"line item sum does not match",
		"total line item amount",
	}
	cleaned := make([]string, 0, len(warnings))
	for _, warning := range warnings {
		lower := strings.ToLower(warning)
		drop := false
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				drop = true
				break
			}
		}
		if !drop {
			cleaned = append(cleaned, warning)
		}
	}
	return cleaned
}
