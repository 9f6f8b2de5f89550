package dtos

import (
	"farmstore-backend/cart"
	"farmstore-backend/notify"

	"github.com/shopspring/decimal"
)

type AddItemRequest struct {
	Product string           `json:"product" binding:"required"`
	Name    string           `json:"name"`
	Price   *decimal.Decimal `json:"price" binding:"required"`
}

type ChangeQuantityRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

type CartItemResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	PriceDisplay string          `json:"price_display"`
}

type CartResponse struct {
	Items        []CartItemResponse `json:"items"`
	ItemCount    int                `json:"item_count"`
	Total        decimal.Decimal    `json:"total"`
	TotalDisplay string             `json:"total_display"`
	Toasts       []notify.Toast     `json:"toasts"`
}

func NewCartResponse(snap cart.Snapshot, toasts []notify.Toast) CartResponse {
	items := make([]CartItemResponse, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, CartItemResponse{
			ID:           it.ID,
			Name:         it.Name,
			Price:        it.UnitPrice,
			Quantity:     it.Quantity,
			LineTotal:    it.LineTotal().Round(2),
			PriceDisplay: cart.FormatMoney(it.UnitPrice),
		})
	}
	if toasts == nil {
		toasts = []notify.Toast{}
	}
	return CartResponse{
		Items:        items,
		ItemCount:    snap.ItemCount,
		Total:        snap.Total,
		TotalDisplay: cart.FormatMoney(snap.Total),
		Toasts:       toasts,
	}
}

type CheckoutResponse struct {
	Message string         `json:"message"`
	Toasts  []notify.Toast `json:"toasts"`
}
