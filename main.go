package main

import (
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/magda-harmony/cmd"
	"github.com/Conceptual-Machines/magda-harmony/internal/config"
	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "magda-harmony@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            !cfg.IsProduction(),
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			logger.Debug("Sentry initialized", logger.Fields{
				"environment": cfg.Environment,
				"release":     releaseVersion,
			})
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	if err := cmd.Execute(cfg, releaseVersion); err != nil {
		sentry.Flush(sentryFlushTimeout)
		os.Exit(1)
	}
}
