package cart

import "errors"

var (
	// ErrEmptyCart is returned by Checkout when there is nothing to order.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidItem is returned for a missing product id, a negative price or
	// a quantity above MaxQuantity.
	ErrInvalidItem = errors.New("invalid cart item")
	// ErrPersist wraps failures to write the cart snapshot. The in-memory cart
	// is left as it was before the failed operation.
	ErrPersist = errors.New("failed to persist cart")

	errCorruptSnapshot = errors.New("corrupt cart snapshot")
)
