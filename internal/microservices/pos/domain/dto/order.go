package dto

import (
	"strings"

	"restaurant-pos/internal/microservices/pos/domain/dao"
)

type CheckoutRequest struct {
	CustomerName    string `json:"customer_name"`
	OrderType       string `json:"order_type"`
	TableNumber     int    `json:"table_number"`
	DeliveryAddress string `json:"delivery_address"`
	PromoApplied    bool   `json:"promo_applied"`
}

// Normalize trims free-text fields in place.
func (r *CheckoutRequest) Normalize() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.OrderType = strings.ToLower(strings.TrimSpace(r.OrderType))
	r.DeliveryAddress = strings.TrimSpace(r.DeliveryAddress)
}

type CheckoutResponse struct {
	OrderNumber string     `json:"order_number"`
	Status      dao.Status `json:"status"`
	Priority    int        `json:"priority"`
	Subtotal    float64    `json:"subtotal"`
	Tax         float64    `json:"tax"`
	Discount    float64    `json:"discount"`
	TotalAmount float64    `json:"total_amount"`
}

type StatusUpdateRequest struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by"`
	Notes     string `json:"notes"`
}

type StatusUpdateResponse struct {
	OrderNumber string     `json:"order_number"`
	OldStatus   dao.Status `json:"old_status"`
	NewStatus   dao.Status `json:"new_status"`
}

type TimelineResponse struct {
	OrderNumber string               `json:"order_number"`
	Events      []dao.StatusLogEntry `json:"events"`
}

type CreateMenuItemRequest struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Available *bool   `json:"available"`
}
