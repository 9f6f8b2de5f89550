package cart

import (
	"github.com/shopspring/decimal"
)

// Currency is the single currency every price in the cart is expressed in.
const Currency = "USD"

// SlotKey names the durable slot holding the cart snapshot.
const SlotKey = "cartItems"

// MaxQuantity caps a single line. Adds or quantity changes that would go
// past it are rejected with ErrInvalidItem.
const MaxQuantity = 9999

// LineItem is one product in the cart.
type LineItem struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is UnitPrice * Quantity, unrounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Snapshot is an immutable copy of the cart handed to subscribers.
type Snapshot struct {
	Items     []LineItem
	ItemCount int
	Total     decimal.Decimal
}

// Empty reports whether the snapshot has no line items.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// FormatMoney renders an amount as "USD 12.50".
func FormatMoney(d decimal.Decimal) string {
	return Currency + " " + d.StringFixed(2)
}

func itemCount(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum.Round(2)
}

func indexOf(items []LineItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
