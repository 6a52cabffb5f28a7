// cmd/mailcheck/main.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/pkg/email"
	"github.com/your-org/kupipodariday-backend/internal/pkg/logger"
)

// Sends a sample password reset email through the configured provider.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./cmd/mailcheck <recipient>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLog := logger.New(cfg)

	mailer, err := email.NewEmailService(cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("failed to configure email")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mailer.SendPasswordResetEmail(ctx, os.Args[1], "Test user", "sample-reset-token"); err != nil {
		appLog.WithError(err).Fatal("test email failed")
	}

	appLog.WithField("provider", cfg.Email.Provider).Info("test email sent")
}
