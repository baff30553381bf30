package domain

import "time"

// Order fulfillment modes.
const (
	TypeDineIn   = "dinein"
	TypePickup   = "pickup"
	TypeDelivery = "delivery"
)

// Order lifecycle statuses. Online orders move pending -> accepted ->
// completed; dine-in orders settle straight from pending. cancelled is a
// terminal branch out of pending or accepted.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type MenuSection struct {
	ID       int        `json:"id"`
	Title    string     `json:"title"`
	Color    string     `json:"color"`
	Days     []string   `json:"days"`
	Position int        `json:"position"`
	Items    []MenuItem `json:"items"`
}

type MenuItem struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	SpiceLevels []string `json:"spiceLevels"`
	Addons      []Addon  `json:"addons"`
	Position    int      `json:"position"`
}

type Addon struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Payment struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

type Order struct {
	ID           int         `json:"id"`
	Number       string      `json:"orderNumber"`
	Customer     Customer    `json:"customer"`
	Type         string      `json:"orderType"`
	TableNumber  *string     `json:"tableNumber,omitempty"`
	DeliveryAddr *string     `json:"deliveryAddress,omitempty"`
	Items        []OrderLine `json:"items"`
	Subtotal     float64     `json:"subTotal"`
	Tax          float64     `json:"tax"`
	Tip          float64     `json:"tip"`
	Total        float64     `json:"total"`
	Payment      Payment     `json:"payment"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
}

type OrderLine struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"price"`
	BasePrice  float64 `json:"basePrice"`
	SpiceLevel string  `json:"spiceLevel,omitempty"`
	Addons     []Addon `json:"addons,omitempty"`
}

type Registration struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Settings toggles which order modes the restaurant currently accepts.
// The latest document wins.
type Settings struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Modes     map[string]bool `json:"modes"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type Printer struct {
	ID        int       `json:"id"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}
