package model

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is inclusive: a subtotal of exactly 500 ships free.
	FreeShippingThreshold = decimal.NewFromInt(500)
	// CanadaTaxRate applies to the subtotal only.
	CanadaTaxRate = decimal.RequireFromString("0.05")
)

// shippingRates is indexed [Destination][ShippingMethod].
var shippingRates = [numDestinations][numShippingMethods]decimal.Decimal{
	Canada:        {decimal.NewFromInt(10), decimal.NewFromInt(15), decimal.NewFromInt(20)},
	UnitedStates:  {decimal.NewFromInt(15), decimal.NewFromInt(25), decimal.NewFromInt(30)},
	International: {decimal.NewFromInt(20), decimal.NewFromInt(30), decimal.NewFromInt(50)},
}

// ShippingRate returns the flat rate for a destination and method.
// It panics on values outside the enums.
func ShippingRate(dest Destination, method ShippingMethod) decimal.Decimal {
	return shippingRates[dest][method]
}

// Pricing is derived from the cart on every read and never stored.
type Pricing struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// Subtotal sums LineTotal over items.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Price computes subtotal, shipping, tax and total for items.
func Price(items []LineItem, method ShippingMethod, dest Destination) Pricing {
	subtotal := Subtotal(items)

	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(FreeShippingThreshold) {
		shipping = ShippingRate(dest, method)
	}

	tax := decimal.Zero
	if dest == Canada {
		tax = subtotal.Mul(CanadaTaxRate)
	}

	return Pricing{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal.Add(shipping).Add(tax),
	}
}
