package dto

import "github.com/shopspring/decimal"

// SalesReport carries money as decimals rounded to cents; they marshal as
// JSON strings.
type SalesReport struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	OrderCount    int             `json:"order_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	Tax           decimal.Decimal `json:"tax"`
	Discounts     decimal.Decimal `json:"discounts"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	TopItems      []TopItem       `json:"top_items"`
}

type TopItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}
