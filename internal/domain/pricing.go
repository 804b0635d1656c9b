package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// NetPrice returns the list price after applying the discount percentage,
// truncated to whole cents. Truncation (floor at two decimals), not
// round-half-up: 100.00 at 33.333% off is 66.66, never 66.67.
//
// Inputs are validated at the HTTP edge; this function assumes a
// non-negative price and a discount in [0, 100].
func NetPrice(price, discountPercent decimal.Decimal) decimal.Decimal {
	net := price.Mul(hundred.Sub(discountPercent)).Div(hundred)
	return net.Truncate(2)
}

// TruncateCents truncates an amount to two decimal places. Used for
// favourites totals so the stored total matches the cent-truncation rule of
// NetPrice.
func TruncateCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Truncate(2)
}
