package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mivora/playlist-bot/internal/config"
	"github.com/mivora/playlist-bot/internal/db"
	"github.com/mivora/playlist-bot/internal/handlers"
	"github.com/mivora/playlist-bot/internal/payment"
	"github.com/mivora/playlist-bot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	database, err := db.Open(store, db.DefaultLimits(), nil)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	var gateway payment.Gateway
	if cfg.ZarinPalMerchantID != "" {
		gateway = payment.NewZarinPal(
			cfg.ZarinPalMerchantID,
			cfg.PublicBaseURL+"/payment/verify",
			cfg.ZarinPalSandbox,
		)
	} else {
		log.Println("ZARINPAL_MERCHANT_ID not set, premium purchases disabled")
	}

	bot, err := telegram.New(cfg, database, gateway)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	router := mux.NewRouter()
	handlers.RegisterRoutes(router, handlers.New(database, gateway, bot, cfg))

	go func() {
		log.Printf("HTTP server running on %s", cfg.HTTPAddr)
		log.Fatal(http.ListenAndServe(cfg.HTTPAddr, router))
	}()

	log.Println("Bot started")
	bot.Start()
}

func openStore(cfg *config.Config) (db.Store, error) {
	switch cfg.StoreBackend {
	case "mysql":
		return db.OpenMySQLStore(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	case "sqlite":
		return db.OpenSQLiteStore(cfg.StorePath)
	default:
		return db.NewFileStore(cfg.StorePath), nil
	}
}
