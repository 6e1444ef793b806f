package dto

// SchemaVersion identifies the extraction contract returned by the LLM and
// persisted for every processed document.
const SchemaVersion = "invoice_v1"

// InvoiceHeader holds the summary-level fields of an extracted invoice.
// Monetary fields are integer cents. Subtotal, tax and total are pointers
// because the upstream draft may legitimately leave them null; discount
// defaults to zero and is never null.
type InvoiceHeader struct {
	InvoiceNumber string `json:"invoice_number,omitempty"`
	InvoiceDate   string `json:"invoice_date"`
	VendorName    string `json:"vendor_name"`
	VendorTaxID   string `json:"vendor_tax_id,omitempty"`
	BuyerName     string `json:"buyer_name,omitempty"`
	CurrencyCode  string `json:"currency_code"`
	SubtotalCents *int64 `json:"subtotal_cents"`
	TaxCents      *int64 `json:"tax_cents"`
	TotalCents    *int64 `json:"total_cents"`
	DiscountCents int64  `json:"discount_cents"`
	DueDate       string `json:"due_date,omitempty"`
	PaymentRef    string `json:"payment_ref,omitempty"`
}

// LineItem is a single invoice line. Qty of zero means "not stated" and is
// normalized to 1 before persistence.
type LineItem struct {
	Idx            int     `json:"idx"`
	Description    string  `json:"description"`
	Qty            float64 `json:"qty"`
	UnitPriceCents *int64  `json:"unit_price_cents"`
	LineTotalCents int64   `json:"line_total_cents"`
	Category       string  `json:"category,omitempty"`
}

// Notes carries LLM-reported warnings and confidence alongside the record.
type Notes struct {
	Warnings   []string `json:"warnings,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// DraftInvoice is the untrusted structured record produced by the LLM
// inference step, prior to reconciliation against the recognized text.
type DraftInvoice struct {
	SchemaVersion string        `json:"schema_version"`
	Invoice       InvoiceHeader `json:"invoice"`
	Items         []LineItem    `json:"items"`
	Notes         *Notes        `json:"notes,omitempty"`
}

// ExtractionResult is the final persisted record for one document.
type ExtractionResult struct {
	SchemaVersion string        `json:"schema_version"`
	Invoice       InvoiceHeader `json:"invoice"`
	Items         []LineItem    `json:"items"`
	Notes         *Notes        `json:"notes,omitempty"`
	FileHash      string        `json:"file_hash"`
	ProcessedAt   string        `json:"processed_at"`
}

// Cents returns the value of an optional amount, zero when absent.
func Cents(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// CentsPtr wraps an amount value for assignment to an optional field.
func CentsPtr(v int64) *int64 {
	return &v
}
