package dao

import "time"

type MenuItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Image     string    `json:"image,omitempty"`
	Price     float64   `json:"price"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

type Worker struct {
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	OrdersProcessed int       `json:"orders_processed"`
	LastSeen        time.Time `json:"last_seen"`
}

type SalesSummary struct {
	OrderCount int
	Revenue    float64
	Tax        float64
	Discounts  float64
	TopItems   []ItemSales
}

type ItemSales struct {
	Name     string
	Quantity int
	Revenue  float64
}
