package app

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-openclaw-cv-sender/internal/config"
	"go-openclaw-cv-sender/internal/conversation"
	"go-openclaw-cv-sender/internal/gdrive"
	"go-openclaw-cv-sender/internal/mailer"
	"go-openclaw-cv-sender/internal/reporter"
	"go-openclaw-cv-sender/internal/session"
	"go-openclaw-cv-sender/internal/telegram"
)

// App is everything both entry points share
type App struct {
	API      *tgbotapi.BotAPI
	Bot      *telegram.Bot
	Store    *session.Store
	Reporter *reporter.TelegramReporter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.RequireDrive(); err != nil {
		return nil, err
	}
	if err := cfg.RequireSMTP(); err != nil {
		return nil, err
	}

	api, err := telegram.NewAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	log.Printf("🤖 Authorized on account @%s", api.Self.UserName)

	drive, err := gdrive.NewClient(ctx, cfg.DriveCredentials, cfg.DriveMaxFileBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to init drive client: %w", err)
	}

	sender, err := mailer.NewSender(mailer.Options{
		Addr:     cfg.SMTPAddr,
		Security: mailer.Security(cfg.SMTPSecurity),
		Username: cfg.GmailUser,
		Password: cfg.GmailAppPassword,
		Timeout:  cfg.NetworkTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init mailer: %w", err)
	}

	store := session.NewStore(cfg.SessionIdleTTL)
	rep := reporter.NewTelegramReporter(api, cfg.TelegramReportChatID)

	runner := conversation.NewRunner(
		conversation.Machine{OwnerName: cfg.OwnerName},
		store,
		drive,
		sender,
		conversation.RunnerConfig{
			FolderID: cfg.DriveFolderID,
			PageSize: cfg.DrivePageSize,
			From:     cfg.MailFrom(),
			Signature: conversation.Signature{
				Name:     cfg.SignatureName,
				Phone:    cfg.SignaturePhone,
				Location: cfg.SignatureLocation,
			},
			Timeout: cfg.NetworkTimeout,
		},
	)
	if rep.Enabled() {
		runner.WithAuditor(rep)
	}

	return &App{
		API:      api,
		Bot:      telegram.NewBot(api, runner),
		Store:    store,
		Reporter: rep,
	}, nil
}

// RunJanitor evicts idle sessions in the background until ctx is done
func (a *App) RunJanitor(ctx context.Context) {
	interval := a.Store.IdleTTL() / 2
	go a.Store.Run(ctx, interval)
}
