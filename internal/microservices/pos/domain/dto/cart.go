package dto

import (
	"restaurant-pos/internal/microservices/pos/cart"
)

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// AddItemRequest adds one unit when Quantity is omitted.
type AddItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   *int   `json:"quantity"`
	Notes      string `json:"notes"`
}

// UpdateQuantityRequest requires Quantity; an explicit 0 removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CartView struct {
	SessionID    string           `json:"session_id"`
	Items        []cart.LineItem  `json:"items"`
	PromoApplied bool             `json:"promo_applied"`
	Totals       cart.OrderTotals `json:"totals"`
}

func NewCartView(sessionID string, items []cart.LineItem, promo bool, totals cart.OrderTotals) CartView {
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartView{SessionID: sessionID, Items: items, PromoApplied: promo, Totals: totals}
}
