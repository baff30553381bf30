package domain

import "time"

// TicketMessage is what the ticket-printer worker consumes. It carries
// everything the kitchen slip needs so the worker never reads the orders
// table.
type TicketMessage struct {
	OrderNumber string      `json:"order_number"`
	TableNumber string      `json:"table_number"`
	Items       []OrderLine `json:"items"`
	Subtotal    float64     `json:"subtotal"`
	Tax         float64     `json:"tax"`
	Total       float64     `json:"total"`
	CreatedAt   time.Time   `json:"created_at"`
}

// OrderCreatedMessage fans out to the notifier after an order is persisted.
type OrderCreatedMessage struct {
	OrderNumber   string    `json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	OrderType     string    `json:"order_type"`
	Total         float64   `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
}
