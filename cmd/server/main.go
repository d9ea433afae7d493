package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/keyvanfa/tableside/internal/cart"
	"github.com/keyvanfa/tableside/internal/checkout"
	"github.com/keyvanfa/tableside/internal/config"
	"github.com/keyvanfa/tableside/internal/database"
	"github.com/keyvanfa/tableside/internal/handler"
	"github.com/keyvanfa/tableside/internal/middleware"
	"github.com/keyvanfa/tableside/internal/payment"
	"github.com/keyvanfa/tableside/internal/queue"
	"github.com/keyvanfa/tableside/internal/repository"
	"github.com/keyvanfa/tableside/internal/router"
	"github.com/keyvanfa/tableside/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the webhook replay fast path.
	// nil means Redis is unreachable and both degrade gracefully.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and replay cache disabled")
	}

	coreCfg := checkout.Config{
		Currency:            cfg.Currency,
		SlotLockTTL:         cfg.SlotLockTTL,
		SlotLockingEnabled:  cfg.SlotLockingEnabled,
		PriceToleranceCents: cfg.PriceToleranceCents,
		CancelMinLead:       cfg.CancelMinLead,
	}

	store := repository.NewStore(db, cfg.SlotLockTTL)
	catalog := store.Catalog()
	provider := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAPIKey, 0)
	notifier := service.NewEventPublisher(cfg.RabbitURL)

	initiator := checkout.NewInitiator(store, catalog, provider, coreCfg)
	confirmer := checkout.NewConfirmer(store, catalog, provider, notifier, rdb, coreCfg)
	canceller := checkout.NewCanceller(store, provider, notifier, coreCfg)

	cartHandler := handler.NewCartHandler(store.Carts(), cart.NewMaterializer(catalog))
	checkoutHandler := handler.NewCheckoutHandler(initiator)
	orderHandler := handler.NewOrderHandler(store, canceller)
	webhookHandler := handler.NewWebhookHandler(confirmer, cfg.WebhookSecret)

	if cfg.RabbitURL != "" {
		// Notification consumer runs for the life of the process and
		// reconnects on its own.
		go func() {
			if err := queue.StartOrderEventsConsumer(cfg.RabbitURL); err != nil {
				log.Printf("order events consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, webhookHandler)
	router.RegisterCustomer(e, cartHandler, checkoutHandler, orderHandler, cfg.JWTSecret)
	router.RegisterOwner(e, orderHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
