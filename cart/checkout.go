package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Handoff receives the order summary produced at checkout, typically to
// pre-fill the contact form message.
type Handoff interface {
	Deliver(ctx context.Context, message string) error
}

type HandoffFunc func(ctx context.Context, message string) error

func (f HandoffFunc) Deliver(ctx context.Context, message string) error {
	return f(ctx, message)
}

// Checkout composes the order summary and delivers it. An empty cart shows
// an error toast and returns ErrEmptyCart without calling h. The cart itself
// is left untouched either way.
func (s *Store) Checkout(ctx context.Context, h Handoff) (string, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	items := s.copyItems()
	if len(items) == 0 {
		s.toasts.Error("Your cart is empty!")
		return "", ErrEmptyCart
	}

	message := Summary(items)
	if err := h.Deliver(ctx, message); err != nil {
		return "", fmt.Errorf("deliver order summary: %w", err)
	}
	return message, nil
}

// Summary renders the plain-text order request for a list of line items.
func Summary(items []LineItem) string {
	lines := make([]string, 0, len(items))
	sum := decimal.Zero
	for _, it := range items {
		lt := it.LineTotal()
		sum = sum.Add(lt)
		lines = append(lines, fmt.Sprintf("%s x%d = %s", it.Name, it.Quantity, FormatMoney(lt)))
	}

	var b strings.Builder
	b.WriteString("I would like to order:\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nTotal: ")
	b.WriteString(FormatMoney(sum))
	b.WriteString("\n\nPlease contact me to complete this order.")
	return b.String()
}
