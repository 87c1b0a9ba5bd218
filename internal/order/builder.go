package order

import (
	"errors"

	"github.com/google/uuid"

	"github.com/elonmasai7/bistro-backend/internal/cart"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrMissingTableNumber    = errors.New("dine-in order requires a table number")
	ErrInvalidServiceContext = errors.New("table number only applies to dine-in orders")
	ErrInvalidServiceType    = errors.New("invalid service type")
)

// BuildParams carries the checkout context supplied by the caller.
type BuildParams struct {
	AccountID      string
	ServiceType    ServiceType
	TableNumber    *int // required positive for dine-in, must be absent otherwise
	SpecialRequest string
	ClientKey      string // idempotency key for this checkout attempt
}

// Build converts a cart into an immutable order. It is a pure transformation:
// no persistence, no cart mutation. The caller persists the result and clears
// the cart only after a confirmed write.
//
// Validation happens before anything else so a structurally invalid order can
// never reach the persistence boundary: an empty cart, a dine-in checkout
// without a valid positive table number, or a table number on a non-dine-in
// order all fail here. A table number supplied for takeout/delivery is
// rejected rather than dropped, so bad input never turns into silent data
// loss.
func Build(c *cart.Cart, p BuildParams) (*Order, error) {
	if c == nil || c.Len() == 0 {
		return nil, ErrEmptyCart
	}
	if !p.ServiceType.Valid() {
		return nil, ErrInvalidServiceType
	}
	if p.ServiceType == DineIn {
		if p.TableNumber == nil || *p.TableNumber <= 0 {
			return nil, ErrMissingTableNumber
		}
	} else if p.TableNumber != nil {
		return nil, ErrInvalidServiceContext
	}

	lines := c.Items()
	items := make([]LineItem, 0, len(lines))
	for _, li := range lines {
		items = append(items, LineItem{
			ID:            uuid.NewString(),
			MenuItemID:    li.MenuItemID,
			Name:          li.Name,
			Price:         li.UnitPrice.StringFixed(2),
			Quantity:      li.Quantity,
			Customization: li.Customization,
		})
	}

	o := &Order{
		ID:             uuid.NewString(),
		AccountID:      p.AccountID,
		Items:          items,
		Total:          c.Total().StringFixed(2), // frozen here, never recomputed
		ServiceType:    p.ServiceType,
		SpecialRequest: p.SpecialRequest,
		Status:         StatusReceived,
		ClientKey:      p.ClientKey,
		// CreatedAt stays zero: the persistence boundary owns the clock.
	}
	if p.ServiceType == DineIn {
		n := *p.TableNumber
		o.TableNumber = &n
	}
	return o, nil
}
