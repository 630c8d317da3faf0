package main

import (
	"fmt"
	"go-openclaw-cv-sender/internal/config"
	"os"
)

func mask(s string) string {
	if len(s) <= 10 {
		return "***"
	}
	return s[:10] + "..."
}

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Telegram Token: %s\n", mask(cfg.TelegramToken))
	fmt.Printf("   Report Chat ID: %d\n", cfg.TelegramReportChatID)
	fmt.Printf("   Owner: %s\n", cfg.OwnerName)
	fmt.Printf("   Drive Folder: %s (page size %d)\n", cfg.DriveFolderID, cfg.DrivePageSize)
	fmt.Printf("   SMTP: %s (%s) as %s\n", cfg.SMTPAddr, cfg.SMTPSecurity, cfg.MailFrom())
	fmt.Printf("   Session TTL: %s, Network timeout: %s\n", cfg.SessionIdleTTL, cfg.NetworkTimeout)

	if err := cfg.RequireDrive(); err != nil {
		fmt.Printf("⚠️ Drive: %v\n", err)
	}
	if err := cfg.RequireSMTP(); err != nil {
		fmt.Printf("⚠️ SMTP: %v\n", err)
	}
}
