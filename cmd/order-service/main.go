package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elonmasai7/bistro-backend/internal/cart"
	"github.com/elonmasai7/bistro-backend/internal/config"
	"github.com/elonmasai7/bistro-backend/internal/db"
	"github.com/elonmasai7/bistro-backend/internal/httpx"
	"github.com/elonmasai7/bistro-backend/internal/mq"
	ord "github.com/elonmasai7/bistro-backend/internal/order"
)

func main() {
	cfg := config.Load()

	if err := db.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("[order] migrate: %v", err)
	}
	pool, err := db.Connect(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[order] db connect: %v", err)
	}
	defer pool.Close()

	queue, err := mq.Dial(cfg.AmqpURL)
	if err != nil {
		log.Fatalf("[order] amqp dial: %v", err)
	}
	defer queue.Close()

	repo := ord.NewPGRepo(pool)
	ext := ord.NewExt(cfg.MenuSvcBaseURL)
	carts := cart.NewStore()

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	auth := r.Group("/", httpx.Auth(cfg.JWTSecret))
	auth.GET("/cart", getCartHandler(carts))
	auth.POST("/cart/items", addCartItemHandler(carts, ext))
	auth.PATCH("/cart/items/:id", updateCartItemHandler(carts))
	auth.DELETE("/cart/items/:id", removeCartItemHandler(carts))
	auth.DELETE("/cart", clearCartHandler(carts))
	auth.POST("/orders", checkoutHandler(carts, repo, queue))
	auth.GET("/orders", listOrdersHandler(repo))
	auth.GET("/orders/:id", getOrderHandler(repo))
	auth.GET("/orders/:id/tracking", trackOrderHandler(repo))
	auth.GET("/loyalty", loyaltyHandler(repo))

	log.Printf("order-service listening on %s", cfg.OrderSvcAddr)
	log.Fatal(r.Run(cfg.OrderSvcAddr))
}
