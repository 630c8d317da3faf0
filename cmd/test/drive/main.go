package main

import (
	"context"
	"flag"
	"fmt"
	"go-openclaw-cv-sender/internal/config"
	"go-openclaw-cv-sender/internal/gdrive"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Lists the configured folder, -download saves the first file into the given directory
func main() {
	download := flag.String("download", "", "directory to save the first file into")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if err := cfg.RequireDrive(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := gdrive.NewClient(ctx, cfg.DriveCredentials, cfg.DriveMaxFileBytes)
	if err != nil {
		log.Fatalf("❌ Failed to init Drive client: %v", err)
	}

	files, err := client.ListFiles(ctx, cfg.DriveFolderID, cfg.DrivePageSize)
	if err != nil {
		log.Fatalf("❌ Failed to list folder: %v", err)
	}
	fmt.Printf("📂 %d files in %s\n", len(files), cfg.DriveFolderID)
	for _, f := range files {
		fmt.Printf("   %s  %s  (%s)\n", f.ID, f.Name, f.MimeType)
	}
	if len(files) == 0 || *download == "" {
		return
	}

	file, err := client.FetchFile(ctx, files[0].ID)
	if err != nil {
		log.Fatalf("❌ Failed to download %s: %v", files[0].Name, err)
	}
	path := filepath.Join(*download, filepath.Base(file.Name))
	if err := os.WriteFile(path, file.Content, 0o644); err != nil {
		log.Fatalf("❌ Failed to save %s: %v", path, err)
	}
	fmt.Printf("✅ Downloaded %s (%s, %d bytes) to %s\n", file.Name, file.MimeType, len(file.Content), path)
}
