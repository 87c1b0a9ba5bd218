package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elonmasai7/bistro-backend/internal/account"
	"github.com/elonmasai7/bistro-backend/internal/config"
	"github.com/elonmasai7/bistro-backend/internal/db"
	"github.com/elonmasai7/bistro-backend/internal/httpx"
)

func main() {
	cfg := config.Load()

	if err := db.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("[account] migrate: %v", err)
	}
	pool, err := db.Connect(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[account] db connect: %v", err)
	}
	defer pool.Close()

	repo := account.NewPGRepo(pool)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/accounts", registerHandler(repo, cfg.JWTSecret))
	r.POST("/accounts/login", loginHandler(repo, cfg.JWTSecret))
	r.GET("/accounts/me", httpx.Auth(cfg.JWTSecret), meHandler(repo))

	log.Printf("account-service listening on %s", cfg.AccountSvcAddr)
	log.Fatal(r.Run(cfg.AccountSvcAddr))
}
