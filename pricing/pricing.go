package pricing

import (
	"os"
	"strconv"
	"sync"
)

// DefaultTaxRate is applied to every totals computation (cart previews and
// order creation alike). Override with the TAX_RATE environment variable.
const DefaultTaxRate = 0.16

var (
	once sync.Once
	rate float64
)

// TaxRate returns the configured tax rate, read once per process.
func TaxRate() float64 {
	once.Do(func() {
		rate = DefaultTaxRate
		if v := os.Getenv("TAX_RATE"); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
				rate = parsed
			}
		}
	})
	return rate
}

// Tax returns the tax amount for a subtotal.
func Tax(subtotal float64) float64 {
	return subtotal * TaxRate()
}

// Total returns subtotal + tax - discount.
func Total(subtotal, discount float64) float64 {
	return subtotal + Tax(subtotal) - discount
}
