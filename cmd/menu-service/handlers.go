package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elonmasai7/bistro-backend/internal/menu"
)

func listMenuHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := menu.Query{
			Category:   c.Query("category"),
			VeganOnly:  c.Query("vegan") == "true",
			GlutenFree: c.Query("gluten_free") == "true",
			Limit:      limit,
			Offset:     offset,
		}
		if q.Category != "" && q.Category != "all" && !menu.ValidCategory(q.Category) {
			c.JSON(http.StatusBadRequest, menu.HTTPError{Error: "unknown category"})
			return
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, menu.HTTPError{Error: "list failed"})
			return
		}
		if items == nil {
			items = []menu.Item{}
		}
		c.JSON(http.StatusOK, menu.ListResponse{
			Category: q.Category,
			Limit:    q.Limit,
			Offset:   q.Offset,
			Items:    items,
		})
	}
}

func getMenuItemHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		it, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, menu.HTTPError{Error: "not found"})
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

func createMenuItemHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req menu.CreateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, menu.HTTPError{Error: "invalid json"})
			return
		}
		if req.Name == "" || !menu.ValidCategory(req.Category) {
			c.JSON(http.StatusBadRequest, menu.HTTPError{Error: "name and a valid category are required"})
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, menu.HTTPError{Error: "price must be a non-negative decimal"})
			return
		}
		it := &menu.Item{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Description:  req.Description,
			Price:        price.StringFixed(2),
			Category:     req.Category,
			IsVegan:      req.IsVegan,
			IsGlutenFree: req.IsGlutenFree,
			ContainsNuts: req.ContainsNuts,
			ImageURL:     req.ImageURL,
		}
		if err := repo.Create(c.Request.Context(), it); err != nil {
			c.JSON(http.StatusInternalServerError, menu.HTTPError{Error: "create failed"})
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

func updateMenuItemHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		cur, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, menu.HTTPError{Error: "not found"})
			return
		}
		var req menu.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, menu.HTTPError{Error: "invalid json"})
			return
		}
		if req.Category != "" && !menu.ValidCategory(req.Category) {
			c.JSON(http.StatusBadRequest, menu.HTTPError{Error: "unknown category"})
			return
		}
		updatePrice := false
		priceStr := ""
		if req.Price != "" {
			price, err := decimal.NewFromString(req.Price)
			if err != nil || price.IsNegative() {
				c.JSON(http.StatusBadRequest, menu.HTTPError{Error: "price must be a non-negative decimal"})
				return
			}
			updatePrice = true
			priceStr = price.StringFixed(2)
		}
		it := &menu.Item{
			ID:           id,
			Name:         req.Name,
			Description:  req.Description,
			Price:        priceStr,
			Category:     req.Category,
			IsVegan:      cur.IsVegan,
			IsGlutenFree: cur.IsGlutenFree,
			ContainsNuts: cur.ContainsNuts,
			ImageURL:     req.ImageURL,
		}
		if req.IsVegan != nil {
			it.IsVegan = *req.IsVegan
		}
		if req.IsGlutenFree != nil {
			it.IsGlutenFree = *req.IsGlutenFree
		}
		if req.ContainsNuts != nil {
			it.ContainsNuts = *req.ContainsNuts
		}
		if err := repo.Update(c.Request.Context(), it, updatePrice); err != nil {
			c.JSON(http.StatusInternalServerError, menu.HTTPError{Error: "update failed"})
			return
		}
		out, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, menu.HTTPError{Error: "not found"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func deleteMenuItemHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, menu.HTTPError{Error: "delete failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, menu.HTTPError{Error: "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
