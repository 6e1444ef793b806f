package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicepipe/dto"
)

func TestNormalizeItems_FillsDefaults(t *testing.T) {
	items := []dto.LineItem{
		{Description: "MacBook Pro laptop", Qty: 0},
		{Description: "Mystery thing", Qty: 3, Category: "Office"},
	}

	out := normalizeItems(items, "")

	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].Qty)
	assert.Equal(t, "Technology", out[0].Category)
	assert.Equal(t, 1, out[0].Idx)
	assert.Equal(t, 3.0, out[1].Qty)
	assert.Equal(t, "Office", out[1].Category)
	assert.Equal(t, 2, out[1].Idx)
}

func TestMergeDescriptorItems_FoldsDescriptorIntoPrevious(t *testing.T) {
	header := &dto.InvoiceHeader{}
	items := []dto.LineItem{
		{Idx: 1, Description: "Wireless keyboard", Qty: 1, LineTotalCents: 4999},
		{Idx: 2, Description: "Black, QWERTY layout", Qty: 1, LineTotalCents: 0},
		{Idx: 3, Description: "USB hub", Qty: 1, LineTotalCents: 2500},
	}

	out := mergeDescriptorItems(items, header)

	require.Len(t, out, 2)
	assert.Equal(t, "Wireless keyboard Black, QWERTY layout", out[0].Description)
	assert.Equal(t, 1, out[0].Idx)
	assert.Equal(t, "USB hub", out[1].Description)
	assert.Equal(t, 2, out[1].Idx)
}

func TestMergeDescriptorItems_DropsSummaryRows(t *testing.T) {
	tax := int64(660)
	header := &dto.InvoiceHeader{TaxCents: &tax, DiscountCents: 0}
	items := []dto.LineItem{
		{Idx: 1, Description: "Office chair", Qty: 1, LineTotalCents: 8800},
		{Idx: 2, Description: "Sales Tax", Qty: 1, LineTotalCents: 660},
		{Idx: 3, Description: "Subtotal", Qty: 1, LineTotalCents: 8800},
	}

	out := mergeDescriptorItems(items, header)

	require.Len(t, out, 1)
	assert.Equal(t, "Office chair", out[0].Description)
}

func TestMergeDescriptorItems_KeepsPricedRows(t *testing.T) {
	header := &dto.InvoiceHeader{}
	price := int64(1500)
	items := []dto.LineItem{
		{Idx: 1, Description: "Notebook", Qty: 1, LineTotalCents: 1500},
		{Idx: 2, Description: "Pen set 3 x $5.00", Qty: 3, UnitPriceCents: &price, LineTotalCents: 4500},
	}

	out := mergeDescriptorItems(items, header)

	require.Len(t, out, 2)
}

func TestMergeDescriptorItems_DescriptorWithCurrencyNotMerged(t *testing.T) {
	header := &dto.InvoiceHeader{}
	items := []dto.LineItem{
		{Idx: 1, Description: "Consulting", Qty: 1, LineTotalCents: 10000},
		{Idx: 2, Description: "Rate was 100.00 per hour", Qty: 1, LineTotalCents: 0},
	}

	out := mergeDescriptorItems(items, header)

	// A line with a money amount is treated as its own row.
	require.Len(t, out, 2)
}

func TestTotalsConsistent(t *testing.T) {
	sub, tax, total := int64(95827), int64(9583), int64(105410)
	header := &dto.InvoiceHeader{SubtotalCents: &sub, TaxCents: &tax, TotalCents: &total}
	assert.True(t, totalsConsistent(header))

	badTotal := int64(200000)
	header.TotalCents = &badTotal
	assert.False(t, totalsConsistent(header))

	header.TotalCents = nil
	assert.True(t, totalsConsistent(header))
}

func TestFilterFalsePositiveWarnings(t *testing.T) {
	sub, tax, total := int64(1000), int64(100), int64(1100)
	header := &dto.InvoiceHeader{SubtotalCents: &sub, TaxCents: &tax, TotalCents: &total}

	warnings := []string{
		"Line item sum does not match invoice subtotal",
		"Vendor tax id looks malformed",
	}
	out := filterFalsePositiveWarnings(warnings, header)

	require.Len(t, out, 1)
	assert.Equal(t, "Vendor tax id looks malformed", out[0])
}

func TestFilterFalsePositiveWarnings_KeptWhenInconsistent(t *testing.T) {
	sub, tax, total := int64(1000), int64(100), int64(5000)
	header := &dto.InvoiceHeader{SubtotalCents: &sub, TaxCents: &tax, TotalCents: &total}

	warnings := []string{"Line item sum does not match invoice subtotal"}
	out := filterFalsePositiveWarnings(warnings, header)

	require.Len(t, out, 1)
}
