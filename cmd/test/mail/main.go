package main

import (
	"context"
	"flag"
	"go-openclaw-cv-sender/internal/config"
	"go-openclaw-cv-sender/internal/conversation"
	"go-openclaw-cv-sender/internal/mailer"
	"go-openclaw-cv-sender/internal/models"
	"log"
	"time"
)

// Sends a sample application without the bot, to GMAIL_USER unless -to is given
func main() {
	to := flag.String("to", "", "recipient address (default GMAIL_USER)")
	company := flag.String("company", "Acme", "company name")
	vacancy := flag.String("vacancy", "Backend Engineer", "vacancy")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if err := cfg.RequireSMTP(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if *to == "" {
		*to = cfg.GmailUser
	}

	sender, err := mailer.NewSender(mailer.Options{
		Addr:     cfg.SMTPAddr,
		Security: mailer.Security(cfg.SMTPSecurity),
		Username: cfg.GmailUser,
		Password: cfg.GmailAppPassword,
		Timeout:  cfg.NetworkTimeout,
	})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	sig := conversation.Signature{Name: cfg.SignatureName, Phone: cfg.SignaturePhone, Location: cfg.SignatureLocation}
	text, html, err := conversation.Letter(*company, *vacancy, sig)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	msg, err := mailer.Compose(cfg.MailFrom(), *to, conversation.Subject(*company, *vacancy), text, html,
		&models.Attachment{Filename: "CV.txt", MimeType: "text/plain", Content: []byte("sample CV\n")})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := sender.Send(ctx, msg); err != nil {
		log.Fatalf("❌ Error al enviar: %v", err)
	}
	log.Printf("✅ Sent %q to %s", msg.Subject, *to)
}
