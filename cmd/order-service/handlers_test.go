package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elonmasai7/bistro-backend/internal/cart"
	ord "github.com/elonmasai7/bistro-backend/internal/order"
)

//
// ---------- STUBS & FAKES ----------
//

// stubRepo implements ord.Repository in memory.
type stubRepo struct {
	lastOrder *ord.Order
	orders    []ord.Order
	failWrite bool
	failRead  bool
}

func (s *stubRepo) Create(ctx context.Context, o *ord.Order) (*ord.Order, error) {
	if s.failWrite {
		return nil, ord.ErrRemoteWrite
	}
	// idempotent on client key, like the real repo
	for i := range s.orders {
		if s.orders[i].ClientKey == o.ClientKey {
			cp := s.orders[i]
			return &cp, nil
		}
	}
	cp := *o
	cp.CreatedAt = time.Now().UTC() // server-side clock
	s.orders = append(s.orders, cp)
	s.lastOrder = &s.orders[len(s.orders)-1]
	out := cp
	return &out, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*ord.Order, error) {
	if s.failRead {
		return nil, ord.ErrRemoteRead
	}
	for i := range s.orders {
		if s.orders[i].ID == id {
			cp := s.orders[i]
			return &cp, nil
		}
	}
	return nil, ord.ErrNotFound
}

func (s *stubRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]ord.Order, error) {
	if s.failRead {
		return nil, ord.ErrRemoteRead
	}
	var out []ord.Order
	// newest first
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].AccountID == accountID {
			out = append(out, s.orders[i])
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id string, status ord.Status) error {
	for i := range s.orders {
		if s.orders[i].ID == id {
			if !ord.CanTransition(s.orders[i].Status, status) {
				return ord.ErrStaleTransition
			}
			s.orders[i].Status = status
			return nil
		}
	}
	return ord.ErrNotFound
}

func (s *stubRepo) CountByAccount(ctx context.Context, accountID string) (int, error) {
	if s.failRead {
		return 0, ord.ErrRemoteRead
	}
	n := 0
	for i := range s.orders {
		if s.orders[i].AccountID == accountID {
			n++
		}
	}
	return n, nil
}

// stubPublisher records published kitchen messages.
type stubPublisher struct {
	keys []string
	msgs []ord.PlacedMessage
	fail bool
}

func (p *stubPublisher) PublishJSON(ctx context.Context, routingKey string, v interface{}) error {
	if p.fail {
		return fmt.Errorf("broker down")
	}
	p.keys = append(p.keys, routingKey)
	if m, ok := v.(ord.PlacedMessage); ok {
		p.msgs = append(p.msgs, m)
	}
	return nil
}

// menuState backs the fake menu-service (GET /menu/:id).
type menuState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func newMenuServer(t *testing.T, initial menuState) (*httptest.Server, *menuState) {
	t.Helper()
	state := &menuState{ID: initial.ID, Name: initial.Name, Price: initial.Price}
	if state.Name == "" {
		state.Name = "Burger"
	}
	if state.Price == "" {
		state.Price = "9.00"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/menu/", func(w http.ResponseWriter, r *http.Request) {
		if path.Base(r.URL.Path) != state.ID {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(state)
	})
	return httptest.NewServer(mux), state
}

// withAccount stands in for httpx.Auth in tests.
func withAccount(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("account_id", id)
		c.Next()
	}
}

func newTestRouter(uid string, carts *cart.Store, repo ord.Repository, pub placedPublisher, ext *ord.Ext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withAccount(uid))
	r.GET("/cart", getCartHandler(carts))
	r.POST("/cart/items", addCartItemHandler(carts, ext))
	r.PATCH("/cart/items/:id", updateCartItemHandler(carts))
	r.DELETE("/cart/items/:id", removeCartItemHandler(carts))
	r.DELETE("/cart", clearCartHandler(carts))
	r.POST("/orders", checkoutHandler(carts, repo, pub))
	r.GET("/orders", listOrdersHandler(repo))
	r.GET("/orders/:id", getOrderHandler(repo))
	r.GET("/orders/:id/tracking", trackOrderHandler(repo))
	r.GET("/loyalty", loyaltyHandler(repo))
	return r
}

func doJSON(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, url, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestAddCartItem_SnapshotsPrice(t *testing.T) {
	t.Parallel()

	itemID := uuid.NewString()
	msrv, _ := newMenuServer(t, menuState{ID: itemID, Name: "Burger", Price: "9.00"})
	defer msrv.Close()

	uid := uuid.NewString()
	carts := cart.NewStore()
	ext := &ord.Ext{HTTP: &http.Client{Timeout: 2 * time.Second}, MenuBaseURL: strings.TrimRight(msrv.URL, "/")}
	r := newTestRouter(uid, carts, &stubRepo{}, &stubPublisher{}, ext)

	body := fmt.Sprintf(`{"menu_item_id":%q,"quantity":2,"customization":"no pickles"}`, itemID)
	w := doJSON(r, http.MethodPost, "/cart/items", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp cartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Total != "18.00" {
		t.Fatalf("cart=%+v", resp)
	}
	if resp.Items[0].Name != "Burger" || resp.Items[0].Customization != "no pickles" {
		t.Fatalf("line=%+v", resp.Items[0])
	}
}

func TestAddCartItem_UnknownMenuItem(t *testing.T) {
	t.Parallel()

	msrv, _ := newMenuServer(t, menuState{ID: uuid.NewString()})
	defer msrv.Close()

	uid := uuid.NewString()
	ext := &ord.Ext{HTTP: &http.Client{Timeout: 2 * time.Second}, MenuBaseURL: strings.TrimRight(msrv.URL, "/")}
	r := newTestRouter(uid, cart.NewStore(), &stubRepo{}, &stubPublisher{}, ext)

	body := fmt.Sprintf(`{"menu_item_id":%q}`, uuid.NewString())
	w := doJSON(r, http.MethodPost, "/cart/items", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (esperaba 404)", w.Code, w.Body.String())
	}
}

func TestCheckout_DineIn_HappyPath(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	carts := cart.NewStore()
	cc := carts.Get(uid)
	mustAdd(t, cc, "Burger", "9.00", 2)
	mustAdd(t, cc, "Soda", "2.50", 1)

	repo := &stubRepo{}
	pub := &stubPublisher{}
	r := newTestRouter(uid, carts, repo, pub, &ord.Ext{})

	w := doJSON(r, http.MethodPost, "/orders", `{"service_type":"dine_in","table_number":7}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got ord.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Total != "20.50" || got.Status != ord.StatusReceived {
		t.Fatalf("order=%+v", got)
	}
	if got.TableNumber == nil || *got.TableNumber != 7 {
		t.Fatalf("tableNumber=%v, esperaba 7", got.TableNumber)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("persistence boundary did not assign a timestamp")
	}
	// cart cleared only after the confirmed write
	if cc.Len() != 0 {
		t.Fatalf("cart not cleared after checkout")
	}
	// kitchen got the message
	if len(pub.keys) != 1 || pub.keys[0] != "kitchen.dine_in" {
		t.Fatalf("published keys=%v", pub.keys)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	repo := &stubRepo{}
	r := newTestRouter(uid, cart.NewStore(), repo, &stubPublisher{}, &ord.Ext{})

	w := doJSON(r, http.MethodPost, "/orders", `{"service_type":"takeout"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s (esperaba 422)", w.Code, w.Body.String())
	}
	if repo.lastOrder != nil {
		t.Fatalf("empty cart reached the repository")
	}
}

func TestCheckout_MissingTableNumber_CartIntact(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	carts := cart.NewStore()
	cc := carts.Get(uid)
	mustAdd(t, cc, "Burger", "9.00", 1)

	repo := &stubRepo{}
	r := newTestRouter(uid, carts, repo, &stubPublisher{}, &ord.Ext{})

	w := doJSON(r, http.MethodPost, "/orders", `{"service_type":"dine_in"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s (esperaba 422)", w.Code, w.Body.String())
	}
	if repo.lastOrder != nil {
		t.Fatalf("invalid order reached the repository")
	}
	if cc.Len() != 1 {
		t.Fatalf("validation failure emptied the cart")
	}
}

func TestCheckout_TableNumberForTakeout(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	carts := cart.NewStore()
	mustAdd(t, carts.Get(uid), "Burger", "9.00", 1)

	r := newTestRouter(uid, carts, &stubRepo{}, &stubPublisher{}, &ord.Ext{})
	w := doJSON(r, http.MethodPost, "/orders", `{"service_type":"takeout","table_number":7}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s (esperaba 422)", w.Code, w.Body.String())
	}
}

func TestCheckout_RemoteWriteError_CartIntact(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	carts := cart.NewStore()
	cc := carts.Get(uid)
	mustAdd(t, cc, "Burger", "9.00", 2)

	repo := &stubRepo{failWrite: true}
	pub := &stubPublisher{}
	r := newTestRouter(uid, carts, repo, pub, &ord.Ext{})

	w := doJSON(r, http.MethodPost, "/orders", `{"service_type":"delivery"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s (esperaba 502)", w.Code, w.Body.String())
	}
	if cc.Len() != 1 {
		t.Fatalf("remote failure emptied the cart; retry is impossible")
	}
	if len(pub.keys) != 0 {
		t.Fatalf("published despite failed write")
	}
}

func TestCheckout_RetrySameClientKey_NoDuplicate(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	carts := cart.NewStore()
	mustAdd(t, carts.Get(uid), "Burger", "9.00", 1)

	repo := &stubRepo{}
	r := newTestRouter(uid, carts, repo, &stubPublisher{}, &ord.Ext{})

	body := `{"service_type":"takeout","client_key":"11111111-1111-1111-1111-111111111111"}`
	w1 := doJSON(r, http.MethodPost, "/orders", body)
	if w1.Code != http.StatusCreated {
		t.Fatalf("first status=%d body=%s", w1.Code, w1.Body.String())
	}
	// client retries after a lost ack; cart is already empty, but the retry
	// must return the committed order instead of failing or duplicating
	mustAdd(t, carts.Get(uid), "Burger", "9.00", 1)
	w2 := doJSON(r, http.MethodPost, "/orders", body)
	if w2.Code != http.StatusCreated {
		t.Fatalf("retry status=%d body=%s", w2.Code, w2.Body.String())
	}
	if len(repo.orders) != 1 {
		t.Fatalf("orders=%d, esperaba 1 (dedup por client_key)", len(repo.orders))
	}
}

func TestCheckout_PublishFailure_OrderStillPlaced(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	carts := cart.NewStore()
	mustAdd(t, carts.Get(uid), "Soda", "2.50", 1)

	repo := &stubRepo{}
	r := newTestRouter(uid, carts, repo, &stubPublisher{fail: true}, &ord.Ext{})

	w := doJSON(r, http.MethodPost, "/orders", `{"service_type":"takeout"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.lastOrder == nil {
		t.Fatalf("order not persisted")
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRouter(uuid.NewString(), cart.NewStore(), &stubRepo{}, &stubPublisher{}, &ord.Ext{})
	w := doJSON(r, http.MethodGet, "/orders/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (esperaba 404)", w.Code, w.Body.String())
	}
}

func TestGetOrder_OtherAccountHidden(t *testing.T) {
	t.Parallel()

	oid := uuid.NewString()
	repo := &stubRepo{orders: []ord.Order{{
		ID: oid, AccountID: uuid.NewString(), Status: ord.StatusReceived, Total: "9.00",
	}}}
	r := newTestRouter(uuid.NewString(), cart.NewStore(), repo, &stubPublisher{}, &ord.Ext{})
	w := doJSON(r, http.MethodGet, "/orders/"+oid, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (esperaba 404 para otra cuenta)", w.Code, w.Body.String())
	}
}

func TestListOrders_NewestFirst(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	repo := &stubRepo{orders: []ord.Order{
		{ID: "o-old", AccountID: uid, Status: ord.StatusDelivered, Total: "5.00"},
		{ID: "o-new", AccountID: uid, Status: ord.StatusReceived, Total: "9.00"},
	}}
	r := newTestRouter(uid, cart.NewStore(), repo, &stubPublisher{}, &ord.Ext{})

	w := doJSON(r, http.MethodGet, "/orders", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var wrap struct {
		Orders []ord.Order `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &wrap); err != nil {
		t.Fatal(err)
	}
	if len(wrap.Orders) != 2 || wrap.Orders[0].ID != "o-new" {
		t.Fatalf("orders=%+v, esperaba o-new primero", wrap.Orders)
	}
}

func TestTrackOrder_Timeline(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	oid := uuid.NewString()
	repo := &stubRepo{orders: []ord.Order{{
		ID: oid, AccountID: uid, Status: ord.StatusPreparing, Total: "9.00",
	}}}
	r := newTestRouter(uid, cart.NewStore(), repo, &stubPublisher{}, &ord.Ext{})

	w := doJSON(r, http.MethodGet, "/orders/"+oid+"/tracking", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var view struct {
		Status           string `json:"status"`
		StageIndex       int    `json:"stage_index"`
		EstimatedMinutes int    `json:"estimated_minutes_remaining"`
		Stages           []struct {
			Status    string `json:"status"`
			Completed bool   `json:"completed"`
			Current   bool   `json:"current"`
		} `json:"stages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.StageIndex != 1 || view.EstimatedMinutes != 10 || len(view.Stages) != 4 {
		t.Fatalf("view=%+v", view)
	}
}

func TestLoyaltySummary(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	repo := &stubRepo{}
	for i := 0; i < 7; i++ {
		_, _ = repo.Create(context.Background(), &ord.Order{
			ID: uuid.NewString(), AccountID: uid, ClientKey: uuid.NewString(),
			Status: ord.StatusDelivered, Total: "9.00", ServiceType: ord.Takeout,
		})
	}
	r := newTestRouter(uid, cart.NewStore(), repo, &stubPublisher{}, &ord.Ext{})

	w := doJSON(r, http.MethodGet, "/loyalty", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Points            int `json:"points"`
		OrdersUntilReward int `json:"orders_until_reward"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Points != 70 || got.OrdersUntilReward != 3 {
		t.Fatalf("loyalty=%+v, esperaba 70 pts / 3 orders", got)
	}
}

func TestCartEndpoints_RoundTrip(t *testing.T) {
	t.Parallel()

	itemID := uuid.NewString()
	msrv, _ := newMenuServer(t, menuState{ID: itemID, Name: "Burger", Price: "9.00"})
	defer msrv.Close()

	uid := uuid.NewString()
	carts := cart.NewStore()
	ext := &ord.Ext{HTTP: &http.Client{Timeout: 2 * time.Second}, MenuBaseURL: strings.TrimRight(msrv.URL, "/")}
	r := newTestRouter(uid, carts, &stubRepo{}, &stubPublisher{}, ext)

	// add
	w := doJSON(r, http.MethodPost, "/cart/items", fmt.Sprintf(`{"menu_item_id":%q}`, itemID))
	if w.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", w.Code, w.Body.String())
	}
	var resp cartResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	lineID := resp.Items[0].ID

	// bump quantity
	w = doJSON(r, http.MethodPatch, "/cart/items/"+lineID, `{"quantity":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status=%d body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != "27.00" {
		t.Fatalf("total=%s, esperaba 27.00", resp.Total)
	}

	// invalid quantity rejected
	w = doJSON(r, http.MethodPatch, "/cart/items/"+lineID, `{"quantity":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("patch qty=0 status=%d (esperaba 400)", w.Code)
	}

	// remove unknown line -> 404
	w = doJSON(r, http.MethodDelete, "/cart/items/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete unknown status=%d (esperaba 404)", w.Code)
	}

	// remove the real line
	w = doJSON(r, http.MethodDelete, "/cart/items/"+lineID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Items) != 0 || resp.Total != "0.00" {
		t.Fatalf("cart=%+v, esperaba vacío", resp)
	}
}

func mustAdd(t *testing.T, c *cart.Cart, name, price string, qty int) {
	t.Helper()
	p, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Add(uuid.NewString(), name, p, qty, ""); err != nil {
		t.Fatal(err)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}
