package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	cartapp "github.com/SergioZanela/ecommerce-project/internal/cart/app"
	cartredis "github.com/SergioZanela/ecommerce-project/internal/cart/infra/redis"
	catalogapp "github.com/SergioZanela/ecommerce-project/internal/catalog/app"
	catalogpg "github.com/SergioZanela/ecommerce-project/internal/catalog/infra/postgres"
	checkoutapp "github.com/SergioZanela/ecommerce-project/internal/checkout/app"
	delivery "github.com/SergioZanela/ecommerce-project/internal/delivery/http"
	identitypg "github.com/SergioZanela/ecommerce-project/internal/identity/infra/postgres"
	"github.com/SergioZanela/ecommerce-project/internal/notify"
	"github.com/SergioZanela/ecommerce-project/internal/notify/sendgrid"
	orderapp "github.com/SergioZanela/ecommerce-project/internal/order/app"
	orderpg "github.com/SergioZanela/ecommerce-project/internal/order/infra/postgres"
	resetapp "github.com/SergioZanela/ecommerce-project/internal/reset/app"
	resetpg "github.com/SergioZanela/ecommerce-project/internal/reset/infra/postgres"

	"github.com/SergioZanela/ecommerce-project/pkg/config"
	"github.com/SergioZanela/ecommerce-project/pkg/logger"
	"github.com/SergioZanela/ecommerce-project/pkg/postgres"
	"github.com/SergioZanela/ecommerce-project/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "api",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer redisClient.Close()

	mailer := sendgrid.NewMailer(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)

	// Catalog
	catalogRepo := catalogpg.NewProductRepo(db)
	catalogSvc := catalogapp.NewService(catalogRepo)

	// Cart (session backed)
	sessionStore := cartredis.NewSessionStore(redisClient)
	cartSvc := cartapp.NewService(sessionStore)

	// Orders
	orderRepo := orderpg.NewOrderRepo(db)
	orderSvc := orderapp.NewService(orderRepo)

	// Invoice notification
	notifier := notify.NewInvoiceNotifier(mailer, orderSvc)

	// Checkout
	checkoutSvc := checkoutapp.NewService(sessionStore, catalogSvc, orderSvc, notifier)

	// Password reset
	userRepo := identitypg.NewUserRepo(db)
	tokenRepo := resetpg.NewTokenRepo(db)
	resetURL := func(token string) string {
		return fmt.Sprintf("%s/password/reset/%s", cfg.BaseURL, token)
	}
	resetSvc := resetapp.NewService(tokenRepo, userRepo, mailer, resetURL,
		time.Duration(cfg.ResetTokenTTLMinutes)*time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := delivery.NewHandler(log, catalogSvc, cartSvc, checkoutSvc, orderSvc, resetSvc, userRepo)
	handler.RegisterRoutes(mux)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
