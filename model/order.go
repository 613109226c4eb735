package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable checkout snapshot.
type Order struct {
	ID    string          `json:"id"`
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Date  time.Time       `json:"date"`
}

// CloneOrders copies the history and every order's item slice.
func CloneOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		o.Items = CloneItems(o.Items)
		out[i] = o
	}
	return out
}
