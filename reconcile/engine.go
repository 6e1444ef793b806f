// Package reconcile implements the invoice amount reconciliation engine: a
// deterministic post-processing layer that extracts ground-truth financial
// quantities from recognized text, repairs known upstream misreadings,
// enforces total = subtotal + tax - discount, and validates the header
// against the line items. It performs no I/O and is safe for concurrent use
// across documents.
package reconcile

import (
	"errors"
	"strings"

	"invoicepipe/dto"
)

// ErrEmptyText reports a contract violation by the recognition step: the
// engine requires non-empty recognized text to work against.
var ErrEmptyText = errors.New("recognized text is empty")

// Field identifies a header amount field for lock bookkeeping.
type Field string

const (
	FieldSubtotal Field = "subtotal"
	FieldTax      Field = "tax"
	FieldDiscount Field = "discount"
	FieldTotal    Field = "total"
)

// Options are the engine tunables. The defaults were calibrated against a
// small fixed document corpus and are likely corpus-specific rather than
// fundamental; override deliberately.
type Options struct {
	// MaxLabelDistance is the maximum gap in characters between a summary
	// label and an amount bound to it.
	MaxLabelDistance int
	// SumTolerance is the relative tolerance when comparing the line item
	// sum to the invoice subtotal or total.
	SumTolerance float64
	// ScaleTolerance is the relative tolerance when matching a power-of-ten
	// scale factor between header amounts and line items.
	ScaleTolerance float64
}

// DefaultOptions returns the corpus-calibrated defaults.
func DefaultOptions() Options {
	return Options{
		MaxLabelDistance: 80,
		SumTolerance:     0.01,
		ScaleTolerance:   0.05,
	}
}

// Engine runs the fixed reconciliation pipeline. A single Engine may be
// shared by concurrent callers; it holds no per-document state.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.MaxLabelDistance <= 0 {
		opts.MaxLabelDistance = def.MaxLabelDistance
	}
	if opts.SumTolerance <= 0 {
		opts.SumTolerance = def.SumTolerance
	}
	if opts.ScaleTolerance <= 0 {
		opts.ScaleTolerance = def.ScaleTolerance
	}
	return &Engine{opts: opts}
}

// ReconciledInvoice is the engine output: the fully resolved record plus the
// ordered warnings accumulated while reconciling it.
type ReconciledInvoice struct {
	Invoice  dto.DraftInvoice
	Warnings []string
}

// Reconcile runs the pipeline over one document. The stages run in fixed
// order, each at most once: lex, associate, merge overrides, correct
// patterns, solve the invariant, guard the discount, validate consistency.
// The draft is copied; the input is never mutated. Malformed financial data
// degrades to defaults plus warnings and never fails the call.
func (e *Engine) Reconcile(text string, draft dto.DraftInvoice) (ReconciledInvoice, error) {
	if strings.TrimSpace(text) == "" {
		return ReconciledInvoice{}, ErrEmptyText
	}

	out := cloneDraft(draft)
	locked := make(map[Field]bool)
	var warnings []string

	summary := e.associate(text, e.lexLabels(text), e.lexAmounts(text))
	e.mergeOverrides(&out.Invoice, summary, locked)
	e.correctPatterns(&out.Invoice, locked)
	solveInvariant(&out.Invoice)
	e.guardDiscount(text, &out.Invoice, locked, &warnings)
	e.validateConsistency(&out, locked, &warnings)

	return ReconciledInvoice{Invoice: out, Warnings: warnings}, nil
}

// SummaryValues extracts the label-to-cents map from recognized text without
// a draft, for diagnostics and tooling.
func (e *Engine) SummaryValues(text string) SummaryValueMap {
	return e.associate(text, e.lexLabels(text), e.lexAmounts(text))
}

// mergeOverrides writes directly observed label-amount evidence into the
// draft header and locks every written field: text evidence always outranks
// model inference. Tax, shipping and fee lines all add on top of the
// subtotal, so they fold into a single additions bucket carried in the tax
// field, matching how downstream consumers read the header.
func (e *Engine) mergeOverrides(inv *dto.InvoiceHeader, summary SummaryValueMap, locked map[Field]bool) {
	if v, ok := summary[LabelSubtotal]; ok {
		inv.SubtotalCents = dto.CentsPtr(v)
		locked[FieldSubtotal] = true
	}
	if v, ok := summary[LabelTotal]; ok {
		inv.TotalCents = dto.CentsPtr(v)
		locked[FieldTotal] = true
	}
	if v, ok := summary[LabelDiscount]; ok {
		inv.DiscountCents = v
		locked[FieldDiscount] = true
	}

	var additions int64
	var have bool
	for _, kind := range []LabelKind{LabelTax, LabelShipping, LabelFees} {
		if v, ok := summary[kind]; ok {
			additions += v
			have = true
		}
	}
	if have {
		inv.TaxCents = dto.CentsPtr(additions)
		locked[FieldTax] = true
	}
}

func cloneDraft(draft dto.DraftInvoice) dto.DraftInvoice {
	out := draft
	out.Invoice.SubtotalCents = clonePtr(draft.Invoice.SubtotalCents)
	out.Invoice.TaxCents = clonePtr(draft.Invoice.TaxCents)
	out.Invoice.TotalCents = clonePtr(draft.Invoice.TotalCents)
	if draft.Items != nil {
		out.Items = make([]dto.LineItem, len(draft.Items))
		for i, item := range draft.Items {
			item.UnitPriceCents = clonePtr(item.UnitPriceCents)
			out.Items[i] = item
		}
	}
	if draft.Notes != nil {
		notes := *draft.Notes
		notes.Warnings = append([]string(nil), draft.Notes.Warnings...)
		out.Notes = &notes
	}
	return out
}

func clonePtr(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
