package order

import "time"

// ServiceType says how the customer receives the order.
type ServiceType string

const (
	DineIn   ServiceType = "dine_in"
	Takeout  ServiceType = "takeout"
	Delivery ServiceType = "delivery"
)

func (t ServiceType) Valid() bool {
	switch t {
	case DineIn, Takeout, Delivery:
		return true
	}
	return false
}

// Status is the fulfillment state. The set is closed and ordered; orders only
// ever move forward through it.
type Status string

const (
	StatusReceived  Status = "received"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
)

var statusRank = map[Status]int{
	StatusReceived:  0,
	StatusPreparing: 1,
	StatusReady:     2,
	StatusDelivered: 3,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether moving from -> to goes forward along the
// fulfillment sequence. Equal or backward moves are rejected.
func CanTransition(from, to Status) bool {
	a, okA := statusRank[from]
	b, okB := statusRank[to]
	return okA && okB && b > a
}

// LineItem is a deep snapshot of a cart line at checkout time, decoupled from
// the cart that produced it.
type LineItem struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id,omitempty"`
	MenuItemID    string `json:"menu_item_id"`
	Name          string `json:"name"`
	Price         string `json:"price"` // NUMERIC -> string
	Quantity      int    `json:"quantity"`
	Customization string `json:"customization,omitempty"`
}

// Order is immutable once created. Total is computed exactly once by the
// builder; CreatedAt is assigned by the persistence boundary, never here.
type Order struct {
	ID             string      `json:"id"`
	AccountID      string      `json:"account_id"`
	Items          []LineItem  `json:"items"`
	Total          string      `json:"total"` // NUMERIC -> string
	ServiceType    ServiceType `json:"service_type"`
	TableNumber    *int        `json:"table_number,omitempty"` // set iff ServiceType == DineIn
	SpecialRequest string      `json:"special_request,omitempty"`
	Status         Status      `json:"status"`
	ClientKey      string      `json:"client_key,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}
