package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// record is the persisted shape of a line item: {id, name, price, quantity}
// with price as a JSON number.
type record struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

func encodeSnapshot(items []LineItem) ([]byte, error) {
	records := make([]record, 0, len(items))
	for _, it := range items {
		records = append(records, record{
			ID:       it.ID,
			Name:     it.Name,
			Price:    json.Number(it.UnitPrice.String()),
			Quantity: it.Quantity,
		})
	}
	return json.Marshal(records)
}

// decodeSnapshot parses a persisted cart. A snapshot that breaks any cart
// invariant is rejected as a whole.
func decodeSnapshot(data []byte) ([]LineItem, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptSnapshot, err)
	}

	items := make([]LineItem, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no id", errCorruptSnapshot, i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", errCorruptSnapshot, r.ID)
		}
		if r.Quantity < 1 || r.Quantity > MaxQuantity {
			return nil, fmt.Errorf("%w: item %q has quantity %d", errCorruptSnapshot, r.ID, r.Quantity)
		}
		price, err := decimal.NewFromString(r.Price.String())
		if err != nil {
			return nil, fmt.Errorf("%w: item %q has price %q", errCorruptSnapshot, r.ID, r.Price)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("%w: item %q has negative price", errCorruptSnapshot, r.ID)
		}
		seen[r.ID] = true
		items = append(items, LineItem{
			ID:        r.ID,
			Name:      r.Name,
			UnitPrice: price,
			Quantity:  r.Quantity,
		})
	}
	return items, nil
}
