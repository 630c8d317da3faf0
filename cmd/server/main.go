package main

import (
	"context"
	"errors"
	"go-openclaw-cv-sender/internal/app"
	"go-openclaw-cv-sender/internal/config"
	"go-openclaw-cv-sender/internal/server"
	"go-openclaw-cv-sender/internal/telegram"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if err := cfg.RequireWebhook(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to start bot: %v", err)
	}
	a.RunJanitor(ctx)

	//register the webhook only when a public url is configured
	if cfg.WebhookURL != "" {
		hookURL := strings.TrimRight(cfg.WebhookURL, "/") + cfg.WebhookPath
		if _, err := url.ParseRequestURI(hookURL); err != nil {
			log.Fatalf("❌ Invalid WEBHOOK_URL: %v", err)
		}
		if err := telegram.SetWebhook(a.API, hookURL, cfg.WebhookSecret); err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Printf("🔗 Webhook set to %s", hookURL)
	} else {
		log.Println("⚠️ WEBHOOK_URL not set, assuming the webhook is registered elsewhere with WEBHOOK_SECRET")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.NewRouter(ctx, cfg.WebhookPath, cfg.WebhookSecret, a.Bot, a.Store),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Server shutdown: %v", err)
		}
	}()

	if err := a.Reporter.SendStatus("CV Sender bot started (webhook)"); err != nil {
		log.Printf("⚠️ Failed to report startup: %v", err)
	}

	log.Printf("Server listening on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	a.Bot.Wait()
	log.Println("👋 Server stopped.")
}
