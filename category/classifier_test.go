package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyByKeyword(t *testing.T) {
	assert.Equal(t, "Technology", Classify("Wireless keyboard and mouse", ""))
	assert.Equal(t, "Food", Classify("Team lunch catering", ""))
	assert.Equal(t, "Transportation", Classify("Airport taxi ride", ""))
}

func TestClassifyVendorHintWins(t *testing.T) {
	assert.Equal(t, "Technology", Classify("Monthly invoice", "Amazon Web Services EMEA"))
	assert.Equal(t, "Food", Classify("Order 4417", "Starbucks Coffee Company"))
}

func TestClassifyAccentFolding(t *testing.T) {
	assert.Equal(t, "Services", Classify("Servicio de limpieza", ""))
}

func TestClassifyNoMatch(t *testing.T) {
	assert.Equal(t, "", Classify("XQ-2231 misc unit", ""))
}
