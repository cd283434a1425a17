package settings

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes a selectable currency
type Currency struct {
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int32  `json:"decimals"`
}

// Currencies is the table of selectable currencies
var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar", Decimals: 2},
	{Code: "EUR", Symbol: "€", Name: "Euro", Decimals: 2},
	{Code: "GBP", Symbol: "£", Name: "British Pound", Decimals: 2},
	{Code: "THB", Symbol: "฿", Name: "Thai Baht", Decimals: 2},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Decimals: 0},
	{Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", Decimals: 2},
	{Code: "KRW", Symbol: "₩", Name: "South Korean Won", Decimals: 0},
	{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Decimals: 2},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Decimals: 2},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Decimals: 2},
	{Code: "BTC", Symbol: "₿", Name: "Bitcoin", Decimals: 8},
}

// fallbackCurrency formats amounts in unknown currencies
var fallbackCurrency = Currency{Symbol: "$", Decimals: 2}

func findCurrency(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// formatAmount renders amount with the currency symbol and decimal places
func formatAmount(c Currency, amount float64) string {
	d := decimal.NewFromFloat(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return strings.Join([]string{sign, c.Symbol, d.StringFixed(c.Decimals)}, "")
}
