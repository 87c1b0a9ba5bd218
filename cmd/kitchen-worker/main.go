package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elonmasai7/bistro-backend/internal/config"
	"github.com/elonmasai7/bistro-backend/internal/db"
	"github.com/elonmasai7/bistro-backend/internal/mq"
	ord "github.com/elonmasai7/bistro-backend/internal/order"
)

// Cook durations per service type, split evenly across the remaining stages.
var cookTime = map[ord.ServiceType]time.Duration{
	ord.DineIn:   8 * time.Second,
	ord.Takeout:  10 * time.Second,
	ord.Delivery: 12 * time.Second,
}

func main() {
	cfg := config.Load()

	if err := db.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("[kitchen] migrate: %v", err)
	}
	pool, err := db.Connect(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[kitchen] db connect: %v", err)
	}
	defer pool.Close()

	queue, err := mq.Dial(cfg.AmqpURL)
	if err != nil {
		log.Fatalf("[kitchen] amqp dial: %v", err)
	}
	defer queue.Close()

	repo := ord.NewPGRepo(pool)

	deliveries, err := queue.ConsumeOrders("kitchen-worker")
	if err != nil {
		log.Fatalf("[kitchen] consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("kitchen-worker consuming from %s", mq.OrdersQueue)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[kitchen] shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Fatalf("[kitchen] delivery channel closed")
			}
			var msg ord.PlacedMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("[kitchen] bad message: %v", err)
				_ = d.Nack(false, false) // unparseable, do not requeue
				continue
			}
			if err := cook(ctx, repo, msg); err != nil {
				log.Printf("[kitchen] order %s failed: %v", msg.OrderID, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// cook walks an order forward through the fulfillment sequence. Transitions
// that already happened (a redelivered message) are skipped, not errors.
func cook(ctx context.Context, repo ord.Repository, msg ord.PlacedMessage) error {
	steps := []ord.Status{ord.StatusPreparing, ord.StatusReady, ord.StatusDelivered}
	wait := cookTime[msg.ServiceType]
	if wait == 0 {
		wait = 10 * time.Second
	}
	for _, next := range steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait / time.Duration(len(steps))):
		}
		if err := repo.UpdateStatus(ctx, msg.OrderID, next); err != nil {
			if errors.Is(err, ord.ErrStaleTransition) {
				continue
			}
			return err
		}
		log.Printf("[kitchen] order %s -> %s", msg.OrderID, next)
	}
	return nil
}
