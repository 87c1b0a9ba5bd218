package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/elonmasai7/bistro-backend/internal/account"
)

type httpError struct {
	Error string `json:"error"`
}

func registerHandler(repo account.Repository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req account.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: "invalid json"})
			return
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, httpError{Error: "username, email and password are required"})
			return
		}
		hash, err := account.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpError{Error: "hash error"})
			return
		}
		a := &account.Account{
			ID:           uuid.NewString(),
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
		}
		if err := repo.Create(c.Request.Context(), a); err != nil {
			if errors.Is(err, account.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, httpError{Error: "account exists (username/email)"})
				return
			}
			c.JSON(http.StatusInternalServerError, httpError{Error: "create failed"})
			return
		}
		tok, err := account.IssueToken(secret, a.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpError{Error: "token error"})
			return
		}
		c.JSON(http.StatusCreated, account.TokenResponse{AccountID: a.ID, Token: tok})
	}
}

func loginHandler(repo account.Repository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req account.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, httpError{Error: "email and password are required"})
			return
		}
		a, err := repo.GetByEmail(c.Request.Context(), req.Email)
		if err != nil || !account.CheckPassword(a.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, httpError{Error: "invalid credentials"})
			return
		}
		tok, err := account.IssueToken(secret, a.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpError{Error: "token error"})
			return
		}
		c.JSON(http.StatusOK, account.TokenResponse{AccountID: a.ID, Token: tok})
	}
}

func meHandler(repo account.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("account_id")
		id, _ := v.(string)
		a, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, httpError{Error: "not found"})
			return
		}
		c.JSON(http.StatusOK, a)
	}
}
