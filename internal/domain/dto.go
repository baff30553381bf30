package domain

// CreateOrderRequest is the cart snapshot the ordering page submits.
// Subtotal/tax/total are the client's own arithmetic and are re-verified
// against a server-side recomputation before anything is persisted.
type CreateOrderRequest struct {
	Customer     Customer    `json:"customer"`
	OrderType    string      `json:"orderType"`
	TableNumber  *string     `json:"tableNumber,omitempty"`
	DeliveryAddr *string     `json:"deliveryAddress,omitempty"`
	Items        []OrderLine `json:"items"`
	Subtotal     float64     `json:"subTotal"`
	Tax          float64     `json:"tax"`
	Total        float64     `json:"total"`
	Payment      Payment     `json:"payment"`
}

type CreateOrderResponse struct {
	OrderNumber string  `json:"orderNumber"`
	Status      string  `json:"status"`
	Total       float64 `json:"total"`
}

type AcceptOrderRequest struct {
	OrderNumber string `json:"orderNumber"`
}

type CancelOrderRequest struct {
	OrderNumber string `json:"orderNumber"`
}

type SettleRequest struct {
	OrderNumbers []string `json:"orderNumbers"`
	Tip          float64  `json:"tip"`
}

// TableBill is the consolidated bill over every pending order on a table.
type TableBill struct {
	TableNumber  string      `json:"tableNumber"`
	OrderNumbers []string    `json:"orderNumbers"`
	Items        []OrderLine `json:"items"`
	Subtotal     float64     `json:"subTotal"`
	Tax          float64     `json:"tax"`
	Total        float64     `json:"total"`
}

type SectionInput struct {
	Title    string   `json:"title"`
	Color    string   `json:"color"`
	Days     []string `json:"days"`
	Position int      `json:"position"`
}

type ItemInput struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	SpiceLevels []string `json:"spiceLevels"`
	Addons      []Addon  `json:"addons"`
	Position    int      `json:"position"`
}

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SettingsInput struct {
	Modes map[string]bool `json:"modes"`
}

type PrinterInput struct {
	IP string `json:"ip"`
}

type PaymentProcessRequest struct {
	Nonce       string  `json:"paymentMethodNonce"`
	Amount      float64 `json:"amount"`
	OrderNumber string  `json:"orderNumber,omitempty"`
}

type PaymentProcessResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

type ClientConfigResponse struct {
	TokenizationKey string `json:"tokenizationKey"`
}
