package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"invoicepipe/dto"
)

// parseDraftResponse turns the raw LLM completion into a validated draft.
// Responses wrapped in markdown code fences are accepted by trimming the
// fence before decoding.
func parseDraftResponse(raw string) (*dto.DraftInvoice, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.Trim(raw, "`")
		raw = strings.TrimSpace(raw)
		if strings.HasPrefix(strings.ToLower(raw), "json") {
			raw = strings.TrimSpace(raw[4:])
		}
	}

	var draft dto.DraftInvoice
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", dto.ErrInvalidDraft, err)
	}
	if draft.SchemaVersion == "" {
		draft.SchemaVersion = dto.SchemaVersion
	}
	if draft.Invoice.DiscountCents < 0 {
		draft.Invoice.DiscountCents = 0
	}
	if err := validateRequiredFields(&draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// validateRequiredFields enforces the contract minimum so the persisted
// record is always complete.
func validateRequiredFields(draft *dto.DraftInvoice) error {
	if strings.TrimSpace(draft.Invoice.VendorName) == "" {
		return fmt.Errorf("%w: vendor_name missing in LLM response", dto.ErrInvalidDraft)
	}
	if strings.TrimSpace(draft.Invoice.InvoiceDate) == "" {
		return fmt.Errorf("%w: invoice_date missing in LLM response", dto.ErrInvalidDraft)
	}
	if _, err := time.Parse("2006-01-02", draft.Invoice.InvoiceDate); err != nil {
		return fmt.Errorf("%w: invalid date %q", dto.ErrInvalidDraft, draft.Invoice.InvoiceDate)
	}
	if len(draft.Items) == 0 {
		return fmt.Errorf("%w: items missing in LLM response", dto.ErrInvalidDraft)
	}
	return nil
}
