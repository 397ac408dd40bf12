package dao

import "time"

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeout, OrderTypeDelivery:
		return true
	}
	return false
}

type Status string

const (
	StatusReceived  Status = "received"
	StatusCooking   Status = "cooking"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusReceived: {StatusCooking, StatusCancelled},
	StatusCooking:  {StatusReady, StatusCancelled},
	StatusReady:    {StatusCompleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusCooking, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to the
// next. Completed and cancelled are terminal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              int64       `json:"id"`
	OrderNumber     string      `json:"order_number"`
	CustomerName    string      `json:"customer_name"`
	OrderType       OrderType   `json:"order_type"`
	TableNumber     int         `json:"table_number,omitempty"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	Subtotal        float64     `json:"subtotal"`
	Tax             float64     `json:"tax"`
	Discount        float64     `json:"discount"`
	TotalAmount     float64     `json:"total_amount"`
	PromoApplied    bool        `json:"promo_applied"`
	Priority        int         `json:"priority"`
	Status          Status      `json:"status"`
	ProcessedBy     string      `json:"processed_by,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID         int64   `json:"id,omitempty"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Notes      string  `json:"notes,omitempty"`
}

type StatusLogEntry struct {
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	Notes     string    `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// OrderMessage is what the POS publishes to the kitchen.
type OrderMessage struct {
	OrderNumber     string      `json:"order_number"`
	CustomerName    string      `json:"customer_name"`
	OrderType       OrderType   `json:"order_type"`
	TableNumber     int         `json:"table_number,omitempty"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	Priority        int         `json:"priority"`
}

// StatusMessage goes out on the notifications fanout on every status change.
type StatusMessage struct {
	OrderNumber         string     `json:"order_number"`
	OldStatus           Status     `json:"old_status"`
	NewStatus           Status     `json:"new_status"`
	ChangedBy           string     `json:"changed_by"`
	Timestamp           time.Time  `json:"timestamp"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

func NewOrderMessage(o Order) OrderMessage {
	return OrderMessage{
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		OrderType:       o.OrderType,
		TableNumber:     o.TableNumber,
		DeliveryAddress: o.DeliveryAddress,
		Items:           o.Items,
		TotalAmount:     o.TotalAmount,
		Priority:        o.Priority,
	}
}
