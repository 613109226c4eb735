package service

import "storefront-cart/model"

// CartEngine is the surface the presentation layer uses.
type CartEngine interface {
	Bind(identity string)
	Identity() string

	AddItem(item model.LineItem)
	RemoveItem(productID, size, color string)
	SetQuantity(productID, size, color string, quantity int)
	Count() int
	Clear()

	SetShippingMethod(m model.ShippingMethod)
	SetDestination(d model.Destination)

	Checkout() model.Order

	Cart() []model.LineItem
	Orders() []model.Order
	ShippingMethod() model.ShippingMethod
	Destination() model.Destination
	Pricing() model.Pricing
	Snapshot() Snapshot
}
