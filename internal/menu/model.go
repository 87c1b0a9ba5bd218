package menu

import "time"

// Valid menu categories. "all" is only a query value, never stored.
const (
	CategoryAppetizers = "appetizers"
	CategoryMains      = "mains"
	CategoryDesserts   = "desserts"
	CategoryDrinks     = "drinks"
)

func ValidCategory(c string) bool {
	switch c {
	case CategoryAppetizers, CategoryMains, CategoryDesserts, CategoryDrinks:
		return true
	}
	return false
}

type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// We store price as a string to avoid rounding errors (NUMERIC in Postgres)
	Price        string    `json:"price"`
	Category     string    `json:"category"`
	IsVegan      bool      `json:"is_vegan"`
	IsGlutenFree bool      `json:"is_gluten_free"`
	ContainsNuts bool      `json:"contains_nuts"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HTTPError represents a standard error in JSON.
type HTTPError struct {
	Error string `json:"error"`
}

// ListResponse is the paginated menu listing.
type ListResponse struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	Items    []Item `json:"items"`
}

// CreateItemRequest payload of creation.
type CreateItemRequest struct {
	Name         string `json:"name"          example:"Margherita"`
	Description  string `json:"description"   example:"Tomato, mozzarella, basil"`
	Price        string `json:"price"         example:"11.50"`
	Category     string `json:"category"      example:"mains"`
	IsVegan      bool   `json:"is_vegan"`
	IsGlutenFree bool   `json:"is_gluten_free"`
	ContainsNuts bool   `json:"contains_nuts"`
	ImageURL     string `json:"image_url"`
}

// UpdateItemRequest payload of partial update.
type UpdateItemRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	Category     string `json:"category"`
	IsVegan      *bool  `json:"is_vegan"`
	IsGlutenFree *bool  `json:"is_gluten_free"`
	ContainsNuts *bool  `json:"contains_nuts"`
	ImageURL     string `json:"image_url"`
}
