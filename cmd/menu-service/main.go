package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elonmasai7/bistro-backend/internal/config"
	"github.com/elonmasai7/bistro-backend/internal/db"
	"github.com/elonmasai7/bistro-backend/internal/httpx"
	"github.com/elonmasai7/bistro-backend/internal/menu"
)

func main() {
	cfg := config.Load()

	if err := db.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("[menu] migrate: %v", err)
	}
	pool, err := db.Connect(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[menu] db connect: %v", err)
	}
	defer pool.Close()

	repo := menu.NewPGRepo(pool)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/menu", listMenuHandler(repo))
	r.GET("/menu/:id", getMenuItemHandler(repo))
	r.POST("/menu", createMenuItemHandler(repo))
	r.PUT("/menu/:id", updateMenuItemHandler(repo))
	r.DELETE("/menu/:id", deleteMenuItemHandler(repo))

	log.Printf("menu-service listening on %s", cfg.MenuSvcAddr)
	log.Fatal(r.Run(cfg.MenuSvcAddr))
}
