package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicepipe/dto"
)

// neutralText has no summary labels, amounts or discount keywords, so the
// pipeline exercises only the draft-side stages.
const neutralText = "scanned invoice document without usable figures"

func draftWith(subtotal, tax, total *int64, discount int64) dto.DraftInvoice {
	return dto.DraftInvoice{
		SchemaVersion: dto.SchemaVersion,
		Invoice: dto.InvoiceHeader{
			InvoiceDate:   "2024-03-01",
			VendorName:    "ACME GmbH",
			CurrencyCode:  "USD",
			SubtotalCents: subtotal,
			TaxCents:      tax,
			TotalCents:    total,
			DiscountCents: discount,
		},
	}
}

func TestReconcileEmptyTextIsContractViolation(t *testing.T) {
	e := New(DefaultOptions())

	_, err := e.Reconcile("   \n\t", draftWith(nil, nil, nil, 0))
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestPatternAGrossTotalConfusion(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(105410), dto.CentsPtr(95827), dto.CentsPtr(105410), 0)

	out, err := e.Reconcile(neutralText, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(95827), *out.Invoice.Invoice.SubtotalCents)
	assert.Equal(t, int64(9583), *out.Invoice.Invoice.TaxCents)
	assert.Equal(t, int64(105410), *out.Invoice.Invoice.TotalCents)
	assert.Empty(t, out.Warnings)
}

func TestPatternBNetValueDuplication(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(750), dto.CentsPtr(750), dto.CentsPtr(825), 0)

	out, err := e.Reconcile(neutralText, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(750), *out.Invoice.Invoice.SubtotalCents)
	assert.Equal(t, int64(75), *out.Invoice.Invoice.TaxCents)
	assert.Equal(t, int64(825), *out.Invoice.Invoice.TotalCents)
}

func TestPatternCommitGuardRejectsNonsense(t *testing.T) {
	e := New(DefaultOptions())
	// Pattern B trigger holds but the recomputed tax would exceed the
	// subtotal, so the correction must not commit.
	draft := draftWith(dto.CentsPtr(100), dto.CentsPtr(100), dto.CentsPtr(900), 0)

	out, err := e.Reconcile("rebate mentioned here", draft)
	require.NoError(t, err)
	assert.Equal(t, int64(100), *out.Invoice.Invoice.SubtotalCents)
	// The invariant enforcement settles the difference on the discount-free
	// side instead.
	assert.Equal(t, *out.Invoice.Invoice.SubtotalCents+*out.Invoice.Invoice.TaxCents-out.Invoice.Invoice.DiscountCents,
		*out.Invoice.Invoice.TotalCents)
}

func TestTextEvidenceOutranksDraft(t *testing.T) {
	e := New(DefaultOptions())
	text := "Subtotal: $964.96\nTax: $66.70\nTotal: $1,031.66"
	draft := draftWith(dto.CentsPtr(111), dto.CentsPtr(222), dto.CentsPtr(333), 0)

	out, err := e.Reconcile(text, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(96496), *out.Invoice.Invoice.SubtotalCents)
	assert.Equal(t, int64(6670), *out.Invoice.Invoice.TaxCents)
	assert.Equal(t, int64(103166), *out.Invoice.Invoice.TotalCents)
	assert.Empty(t, out.Warnings)
}

func TestLockedFieldImmuneToPatternCorrection(t *testing.T) {
	e := New(DefaultOptions())
	// Subtotal equals total and tax is plausible: Pattern A's trigger
	// holds, but the subtotal is locked by text evidence and must survive.
	text := "Subtotal: $1,054.10"
	draft := draftWith(dto.CentsPtr(105410), dto.CentsPtr(95827), dto.CentsPtr(105410), 0)

	out, err := e.Reconcile(text, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(105410), *out.Invoice.Invoice.SubtotalCents)
}

func TestInvariantSolvesSingleMissingField(t *testing.T) {
	e := New(DefaultOptions())

	out, err := e.Reconcile(neutralText, draftWith(dto.CentsPtr(1000), nil, dto.CentsPtr(1100), 0))
	require.NoError(t, err)
	assert.Equal(t, int64(100), *out.Invoice.Invoice.TaxCents)

	out, err = e.Reconcile(neutralText, draftWith(dto.CentsPtr(1000), dto.CentsPtr(100), nil, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1100), *out.Invoice.Invoice.TotalCents)

	out, err = e.Reconcile(neutralText, draftWith(nil, dto.CentsPtr(100), dto.CentsPtr(1100), 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), *out.Invoice.Invoice.SubtotalCents)
}

func TestInvariantLeavesMultipleMissingAtZero(t *testing.T) {
	e := New(DefaultOptions())

	out, err := e.Reconcile(neutralText, draftWith(nil, nil, nil, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), *out.Invoice.Invoice.SubtotalCents)
	assert.Equal(t, int64(0), *out.Invoice.Invoice.TaxCents)
	assert.Equal(t, int64(0), *out.Invoice.Invoice.TotalCents)
}

func TestDiscountGuardZeroesWithoutTextualEvidence(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(1000), dto.CentsPtr(100), dto.CentsPtr(900), 200)

	out, err := e.Reconcile(neutralText, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Invoice.Invoice.DiscountCents)
	// Zeroing the bogus discount shifted the identity; the unlocked total
	// absorbs it.
	assert.Equal(t, int64(1100), *out.Invoice.Invoice.TotalCents)
}

func TestDiscountKeptWithTextualEvidence(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(1000), dto.CentsPtr(100), dto.CentsPtr(900), 200)

	out, err := e.Reconcile("Ein Rabatt? No: un descuento was applied", draft)
	require.NoError(t, err)
	assert.Equal(t, int64(200), out.Invoice.Invoice.DiscountCents)
	assert.Equal(t, int64(900), *out.Invoice.Invoice.TotalCents)
}

func TestScaleRepairHeaderInflatedHundredfold(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(9649600), dto.CentsPtr(0), dto.CentsPtr(9649600), 0)
	draft.Items = []dto.LineItem{
		{Idx: 1, Description: "widgets", Qty: 1, LineTotalCents: 50000},
		{Idx: 2, Description: "gadgets", Qty: 1, LineTotalCents: 46496},
	}

	out, err := e.Reconcile(neutralText, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(96496), *out.Invoice.Invoice.SubtotalCents)
	assert.Equal(t, int64(96496), *out.Invoice.Invoice.TotalCents)
	assert.Equal(t, int64(50000), out.Invoice.Items[0].LineTotalCents)
	assert.Empty(t, out.Warnings, "uniform scale errors repair silently")
}

func TestScaleRepairItemsInflatedTenfold(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(5000), dto.CentsPtr(0), dto.CentsPtr(5000), 0)
	draft.Items = []dto.LineItem{
		{Idx: 1, Description: "service", Qty: 1, LineTotalCents: 50000},
	}

	out, err := e.Reconcile(neutralText, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), out.Invoice.Items[0].LineTotalCents)
	assert.Equal(t, int64(5000), *out.Invoice.Invoice.SubtotalCents)
	assert.Empty(t, out.Warnings)
}

func TestLineItemMismatchWarns(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(9000), dto.CentsPtr(0), dto.CentsPtr(9000), 0)
	draft.Items = []dto.LineItem{
		{Idx: 1, Description: "parts", Qty: 1, LineTotalCents: 5000},
	}

	out, err := e.Reconcile(neutralText, draft)
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "does not match invoice subtotal")
	assert.Contains(t, out.Warnings[0], "4000")
	assert.Equal(t, int64(9000), *out.Invoice.Invoice.SubtotalCents)
}

func TestLineItemSumWithinToleranceSilent(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(10000), dto.CentsPtr(0), dto.CentsPtr(10000), 0)
	draft.Items = []dto.LineItem{
		{Idx: 1, Description: "parts", Qty: 1, LineTotalCents: 9950},
	}

	out, err := e.Reconcile(neutralText, draft)
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)
}

func TestReconcileIsIdempotent(t *testing.T) {
	e := New(DefaultOptions())
	text := "Subtotal: $100.00\nTax: $8.00\ninvoice with a discount of sorts"
	draft := draftWith(dto.CentsPtr(111), dto.CentsPtr(222), dto.CentsPtr(10800), 0)
	draft.Items = []dto.LineItem{{Idx: 1, Description: "thing", Qty: 1, LineTotalCents: 10000}}

	first, err := e.Reconcile(text, draft)
	require.NoError(t, err)
	second, err := e.Reconcile(text, draft)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	e := New(DefaultOptions())
	draft := draftWith(dto.CentsPtr(105410), dto.CentsPtr(95827), dto.CentsPtr(105410), 0)

	_, err := e.Reconcile(neutralText, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(105410), *draft.Invoice.SubtotalCents)
	assert.Equal(t, int64(95827), *draft.Invoice.TaxCents)
}

func TestInvariantHoldsAcrossOutcomes(t *testing.T) {
	e := New(DefaultOptions())
	drafts := []dto.DraftInvoice{
		draftWith(dto.CentsPtr(105410), dto.CentsPtr(95827), dto.CentsPtr(105410), 0),
		draftWith(dto.CentsPtr(750), dto.CentsPtr(750), dto.CentsPtr(825), 0),
		draftWith(dto.CentsPtr(1000), nil, dto.CentsPtr(1100), 0),
		draftWith(dto.CentsPtr(1000), dto.CentsPtr(100), dto.CentsPtr(900), 200),
		draftWith(nil, nil, nil, 0),
	}
	for _, draft := range drafts {
		out, err := e.Reconcile(neutralText, draft)
		require.NoError(t, err)
		inv := out.Invoice.Invoice
		assert.Equal(t, *inv.SubtotalCents+*inv.TaxCents-inv.DiscountCents, *inv.TotalCents)
	}
}
