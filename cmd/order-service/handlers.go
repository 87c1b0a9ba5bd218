package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elonmasai7/bistro-backend/internal/cart"
	"github.com/elonmasai7/bistro-backend/internal/loyalty"
	ord "github.com/elonmasai7/bistro-backend/internal/order"
	"github.com/elonmasai7/bistro-backend/internal/tracking"
)

// placedPublisher is the slice of mq.Client checkout needs; stubbed in tests.
type placedPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v interface{}) error
}

type httpError struct {
	Error string `json:"error"`
}

type cartResponse struct {
	Items []cart.LineItem `json:"items"`
	Total string          `json:"total"`
}

func accountID(c *gin.Context) string {
	v, _ := c.Get("account_id")
	s, _ := v.(string)
	return s
}

func cartView(cc *cart.Cart) cartResponse {
	items := cc.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return cartResponse{Items: items, Total: cc.Total().StringFixed(2)}
}

func getCartHandler(carts *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, cartView(carts.Get(accountID(c))))
	}
}

func addCartItemHandler(carts *cart.Store, ext *ord.Ext) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MenuItemID == "" {
			c.JSON(http.StatusBadRequest, httpError{Error: "menu_item_id is required"})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		// Snapshot the catalog price now; later menu edits must not move an
		// in-progress cart.
		it, err := ext.FetchMenuItem(c.Request.Context(), req.MenuItemID)
		if err != nil {
			c.JSON(http.StatusNotFound, httpError{Error: "menu item not found"})
			return
		}
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			c.JSON(http.StatusBadGateway, httpError{Error: "menu returned an invalid price"})
			return
		}
		cc := carts.Get(accountID(c))
		if _, err := cc.Add(it.ID, it.Name, price, req.Quantity, req.Customization); err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
			return
		}
		c.JSON(http.StatusCreated, cartView(cc))
	}
}

func updateCartItemHandler(carts *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: "invalid json"})
			return
		}
		cc := carts.Get(accountID(c))
		switch err := cc.UpdateQuantity(c.Param("id"), req.Quantity); {
		case errors.Is(err, cart.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		case errors.Is(err, cart.ErrLineItemNotFound):
			c.JSON(http.StatusNotFound, httpError{Error: err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, httpError{Error: "update failed"})
		default:
			c.JSON(http.StatusOK, cartView(cc))
		}
	}
}

func removeCartItemHandler(carts *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cc := carts.Get(accountID(c))
		if err := cc.Remove(c.Param("id")); err != nil {
			c.JSON(http.StatusNotFound, httpError{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, cartView(cc))
	}
}

func clearCartHandler(carts *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cc := carts.Get(accountID(c))
		cc.Clear()
		c.JSON(http.StatusOK, cartView(cc))
	}
}

func checkoutHandler(carts *cart.Store, repo ord.Repository, pub placedPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: "invalid json"})
			return
		}
		if req.ClientKey == "" {
			req.ClientKey = uuid.NewString()
		}
		acct := accountID(c)
		cc := carts.Get(acct)

		o, err := ord.Build(cc, ord.BuildParams{
			AccountID:      acct,
			ServiceType:    ord.ServiceType(req.ServiceType),
			TableNumber:    req.TableNumber,
			SpecialRequest: req.SpecialRequest,
			ClientKey:      req.ClientKey,
		})
		if err != nil {
			// Validation failures never reach the database; the cart stays as
			// it was.
			c.JSON(http.StatusUnprocessableEntity, httpError{Error: err.Error()})
			return
		}

		committed, err := repo.Create(c.Request.Context(), o)
		if err != nil {
			// Remote failure: cart intact so the user can retry without
			// re-entering items.
			c.JSON(http.StatusBadGateway, httpError{Error: "could not place order"})
			return
		}

		// The write is confirmed; only now does the cart go away.
		cc.Clear()

		key := fmt.Sprintf("kitchen.%s", committed.ServiceType)
		msg := ord.PlacedMessage{
			OrderID:     committed.ID,
			AccountID:   committed.AccountID,
			ServiceType: committed.ServiceType,
			TableNumber: committed.TableNumber,
			Total:       committed.Total,
			Items:       committed.Items,
		}
		if err := pub.PublishJSON(c.Request.Context(), key, msg); err != nil {
			// The order is durable; the kitchen can still pick it up from the
			// database, so a publish failure does not fail the checkout.
			log.Printf("[order] publish %s failed: %v", committed.ID, err)
		}

		c.JSON(http.StatusCreated, committed)
	}
}

func listOrdersHandler(repo ord.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		orders, err := repo.ListByAccount(c.Request.Context(), accountID(c), limit, offset)
		if err != nil {
			c.JSON(http.StatusBadGateway, httpError{Error: "could not list orders"})
			return
		}
		if orders == nil {
			orders = []ord.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(repo ord.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, ord.ErrNotFound) {
				c.JSON(http.StatusNotFound, httpError{Error: "not found"})
				return
			}
			c.JSON(http.StatusBadGateway, httpError{Error: "could not load order"})
			return
		}
		if o.AccountID != accountID(c) {
			c.JSON(http.StatusNotFound, httpError{Error: "not found"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func trackOrderHandler(repo ord.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, ord.ErrNotFound) {
				c.JSON(http.StatusNotFound, httpError{Error: "not found"})
				return
			}
			c.JSON(http.StatusBadGateway, httpError{Error: "could not load order"})
			return
		}
		if o.AccountID != accountID(c) {
			c.JSON(http.StatusNotFound, httpError{Error: "not found"})
			return
		}
		c.JSON(http.StatusOK, tracking.Timeline(o.Status))
	}
}

func loyaltyHandler(repo ord.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := repo.CountByAccount(c.Request.Context(), accountID(c))
		if err != nil {
			c.JSON(http.StatusBadGateway, httpError{Error: "could not load loyalty summary"})
			return
		}
		c.JSON(http.StatusOK, loyalty.Summarize(n))
	}
}
