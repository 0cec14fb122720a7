package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoneyFormatterUsesLocaleSeparators(t *testing.T) {
	assert.Equal(t, "1,250,000.00", newMoneyFormatter("en").Format(1250000))
	assert.Equal(t, "1.250.000,00", newMoneyFormatter("id").Format(1250000))
	assert.Equal(t, "12,345", newMoneyFormatter("en").Int(12345))
}

func TestMoneyFormatterFallsBackOnBadLocale(t *testing.T) {
	assert.Equal(t, newMoneyFormatter("id").Format(10), newMoneyFormatter("not a locale!").Format(10))
}
