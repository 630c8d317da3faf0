package main

import (
	"context"
	"go-openclaw-cv-sender/internal/app"
	"go-openclaw-cv-sender/internal/config"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	//load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("🔧 Config loaded. Drive folder: %s", cfg.DriveFolderID)

	//stop on Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to start bot: %v", err)
	}
	a.RunJanitor(ctx)

	//polling and webhook cannot be active at the same time
	if _, err := a.API.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Printf("⚠️ Could not delete webhook: %v", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := a.API.GetUpdatesChan(u)

	log.Println("🚀 CV Sender bot is polling for updates...")
	if err := a.Reporter.SendStatus("CV Sender bot started (polling)"); err != nil {
		log.Printf("⚠️ Failed to report startup: %v", err)
	}

	go func() {
		<-ctx.Done()
		a.API.StopReceivingUpdates()
	}()
	a.Bot.Run(ctx, updates)

	log.Println("👋 Bot stopped.")
}
