package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MenuItemDTO is the slice of the menu-service payload the cart needs: the
// identity and the price that gets snapshotted at add time.
type MenuItemDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

// Ext bundles the order service's outbound collaborators.
type Ext struct {
	HTTP        *http.Client
	MenuBaseURL string
}

func NewExt(menuBaseURL string) *Ext {
	return &Ext{
		HTTP:        &http.Client{Timeout: 5 * time.Second},
		MenuBaseURL: menuBaseURL,
	}
}

func (e *Ext) FetchMenuItem(ctx context.Context, id string) (*MenuItemDTO, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/menu/%s", e.MenuBaseURL, id), nil)
	res, err := e.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("menu item not found")
	}
	var it MenuItemDTO
	if err := json.NewDecoder(res.Body).Decode(&it); err != nil {
		return nil, err
	}
	return &it, nil
}
