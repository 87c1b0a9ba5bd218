// Package cart implements the session shopping cart: an ordered list of line
// items staged for checkout. A cart is never persisted; it must be turned into
// an order first. Prices are snapshotted at add time, so later catalog price
// changes do not touch a cart in progress.
package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrLineItemNotFound = errors.New("line item not found")
)

// LineItem is one cart entry. MenuItemID, Name and UnitPrice are copied from
// the catalog when the item is added.
type LineItem struct {
	ID            string          `json:"id"`
	MenuItemID    string          `json:"menu_item_id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	Customization string          `json:"customization,omitempty"`
}

// Subtotal returns unit price × quantity for this line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds the line items for one session. Mutations are serialized by the
// caller (one session, one writer); there is no locking here.
type Cart struct {
	items []LineItem
}

func New() *Cart { return &Cart{} }

// Add appends a new line item with a price snapshot of the given menu item.
// Returns the generated line item id.
func (c *Cart) Add(menuItemID, name string, unitPrice decimal.Decimal, quantity int, customization string) (string, error) {
	if quantity <= 0 {
		return "", ErrInvalidQuantity
	}
	li := LineItem{
		ID:            uuid.NewString(),
		MenuItemID:    menuItemID,
		Name:          name,
		UnitPrice:     unitPrice,
		Quantity:      quantity,
		Customization: customization,
	}
	c.items = append(c.items, li)
	return li.ID, nil
}

// Remove deletes the line item with the given id. Removing an id that is not
// in the cart returns ErrLineItemNotFound; it is not a silent no-op.
func (c *Cart) Remove(lineItemID string) error {
	for i, li := range c.items {
		if li.ID == lineItemID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrLineItemNotFound
}

// UpdateQuantity replaces the quantity of an existing line item.
func (c *Cart) UpdateQuantity(lineItemID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.items {
		if c.items[i].ID == lineItemID {
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineItemNotFound
}

// Total recomputes the cart total from current contents on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	return append([]LineItem(nil), c.items...)
}

func (c *Cart) Len() int { return len(c.items) }

// Clear empties the cart. Callers invoke this only after a confirmed order
// write, so a failed checkout leaves the cart intact for retry.
func (c *Cart) Clear() { c.items = nil }
