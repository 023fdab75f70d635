// Package format renders amounts for display and export.
package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is a display currency. Amounts are never converted between
// currencies; only the label changes.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var currencies = []Currency{
	{Code: "RON", Symbol: "RON", Name: "Romanian Leu"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "USD", Symbol: "$", Name: "US dollar"},
}

var printer = message.NewPrinter(language.English)

// Currencies returns the supported currencies, default first.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// DefaultCurrency returns the currency used when none is selected.
func DefaultCurrency() Currency {
	c, _ := LookupCurrency(constants.DefaultCurrency)
	return c
}

// LookupCurrency finds a supported currency by its ISO code.
func LookupCurrency(code string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == normalized {
			return c, nil
		}
	}
	return Currency{}, fmt.Errorf("unsupported currency %q", code)
}

// Number returns a value rounded to cents with thousands separators (e.g., "-1,234.56").
func Number(value float64) string {
	rounded := mathutil.Round(value)
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return printer.Sprintf("%.2f", rounded)
}

// Amount returns a value followed by the currency symbol (e.g., "1,234.56 RON").
func Amount(value float64, currency Currency) string {
	return Number(value) + " " + currency.Symbol
}

// Percent renders a rate the way it was entered (e.g., "5.25%").
func Percent(rate float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", rate), "0"), ".") + "%"
}
