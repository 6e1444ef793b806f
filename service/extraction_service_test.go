package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPages(t *testing.T) {
	pages := []string{
		"  Invoice No. 42  \n\n   \nVendor: Acme Corp\n",
		"\nTotal: $10.00",
	}

	out := cleanPages(pages)

	require.Len(t, out, 2)
	assert.Equal(t, "Invoice No. 42\nVendor: Acme Corp", out[0])
	assert.Equal(t, "Total: $10.00", out[1])
}

func TestDynamicCompletionBudget(t *testing.T) {
	assert.Equal(t, 376, dynamicCompletionBudget(1))
	assert.Equal(t, 376, dynamicCompletionBudget(0))
	assert.Equal(t, 616, dynamicCompletionBudget(3))
	assert.Equal(t, 1024, dynamicCompletionBudget(12))
}

func TestResolveCurrency(t *testing.T) {
	assert.Equal(t, "USD", resolveCurrency("UNK", "Total: $10.00"))
	assert.Equal(t, "EUR", resolveCurrency("UNK", "Gesamt: € 49,99"))
	assert.Equal(t, "GBP", resolveCurrency("UNK", "Total: £5.00"))
	assert.Equal(t, "CHF", resolveCurrency("CHF", "Total 12.00"))
	assert.Equal(t, "USD", resolveCurrency("", "no symbols here"))
}
