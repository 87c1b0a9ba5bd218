package order

// AddCartItemRequest payload for adding a catalog item to the cart.
type AddCartItemRequest struct {
	MenuItemID    string `json:"menu_item_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity      int    `json:"quantity"     example:"2"`
	Customization string `json:"customization" example:"no onions"`
}

// UpdateCartItemRequest payload for changing a line item's quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" example:"3"`
}

// CheckoutRequest payload for turning the cart into an order.
type CheckoutRequest struct {
	ServiceType    string `json:"service_type" example:"dine_in"`
	TableNumber    *int   `json:"table_number,omitempty" example:"7"`
	SpecialRequest string `json:"special_request,omitempty"`
	// ClientKey deduplicates checkout retries after a lost ack. Generated by
	// the client once per checkout attempt; the server fills one in if absent.
	ClientKey string `json:"client_key,omitempty"`
}

// PlacedMessage is the event published to the kitchen queue after a confirmed
// order write.
type PlacedMessage struct {
	OrderID     string      `json:"order_id"`
	AccountID   string      `json:"account_id"`
	ServiceType ServiceType `json:"service_type"`
	TableNumber *int        `json:"table_number,omitempty"`
	Total       string      `json:"total"`
	Items       []LineItem  `json:"items"`
}
