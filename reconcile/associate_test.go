package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssociateGroupedLabelsReadColumnWise(t *testing.T) {
	e := New(DefaultOptions())

	summary := e.SummaryValues("Subtotal:\nShipping:\n$964.96\n$66.70")
	require.Len(t, summary, 2)
	assert.Equal(t, int64(96496), summary[LabelSubtotal])
	assert.Equal(t, int64(6670), summary[LabelShipping])
}

func TestAssociateStandaloneBindsNearestFollowing(t *testing.T) {
	e := New(DefaultOptions())

	summary := e.SummaryValues("Total: $25.00 and later $99.99")
	require.Len(t, summary, 1)
	assert.Equal(t, int64(2500), summary[LabelTotal])
}

func TestAssociateBindsParenthesizedAmount(t *testing.T) {
	e := New(DefaultOptions())

	summary := e.SummaryValues("Total (100.00)")
	require.Len(t, summary, 1)
	assert.Equal(t, int64(10000), summary[LabelTotal])
}

func TestAssociateDistanceBoundary(t *testing.T) {
	e := New(DefaultOptions())

	near := "Total:" + strings.Repeat(" ", 79) + "$5.00"
	summary := e.SummaryValues(near)
	require.Len(t, summary, 1)
	assert.Equal(t, int64(500), summary[LabelTotal])

	far := "Total:" + strings.Repeat(" ", 81) + "$5.00"
	assert.Empty(t, e.SummaryValues(far))
}

func TestAssociateFirstBindingPerKindWins(t *testing.T) {
	e := New(DefaultOptions())

	summary := e.SummaryValues("Total: $10.00\nTotal: $20.00")
	require.Len(t, summary, 1)
	assert.Equal(t, int64(1000), summary[LabelTotal])
}

func TestAssociateRunWithoutAmountsYieldsNothing(t *testing.T) {
	e := New(DefaultOptions())

	assert.Empty(t, e.SummaryValues("Subtotal:\nTotal:\nno numbers anywhere"))
}

func TestAssociateAmountBeforeLabelNotBound(t *testing.T) {
	e := New(DefaultOptions())

	assert.Empty(t, e.SummaryValues("$42.00 was charged\nTotal:"))
}

func TestAssociateGroupBrokenByInterveningAmount(t *testing.T) {
	e := New(DefaultOptions())

	// An amount between two labels splits them into standalone bindings.
	summary := e.SummaryValues("Subtotal: $100.00\nTax: $8.00")
	require.Len(t, summary, 2)
	assert.Equal(t, int64(10000), summary[LabelSubtotal])
	assert.Equal(t, int64(800), summary[LabelTax])
}

func TestAssociateCustomDistance(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLabelDistance = 10
	e := New(opts)

	text := "Total:" + strings.Repeat(" ", 20) + "$5.00"
	assert.Empty(t, e.SummaryValues(text))
}
