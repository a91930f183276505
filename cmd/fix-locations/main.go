package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-linkedin-sweeper/internal/config"
	"go-linkedin-sweeper/internal/database"
	"go-linkedin-sweeper/internal/geo"
	"go-linkedin-sweeper/internal/logger"
	"go-linkedin-sweeper/internal/reporter"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type CLIFlags struct {
	ConfigFile string   `help:"Path to configuration file" default:"configs/config.yaml" short:"c"`
	Locations  []string `arg:"" optional:"" help:"Normalize these strings and exit without touching the database"`
}

func main() {
	var flags CLIFlags
	kctx := kong.Parse(&flags, kong.Description("Re-normalize geo_candidates and delete rows that are not real locations."))
	if kctx.Error != nil {
		fmt.Printf("Error parsing flags: %v\n", kctx.Error)
		os.Exit(1)
	}

	if len(flags.Locations) > 0 {
		for _, raw := range flags.Locations {
			normalized, ok := geo.Normalize(raw)
			switch {
			case !ok:
				fmt.Printf("❌ %q -> rejected\n", raw)
			case !geo.IsValid(raw):
				fmt.Printf("⚠️ %q -> %q (not a valid place)\n", raw, normalized)
			default:
				fmt.Printf("✅ %q -> %q\n", raw, normalized)
			}
		}
		return
	}

	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("location fix-up failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	summary, err := geo.FixLocations(ctx, repo, log.Named("geo"))
	if err != nil {
		return err
	}

	fmt.Printf("\n📍 Checked %d: %d consistent, %d updated (%d failed), %d deleted (%d failed), %d skipped\n",
		summary.Checked, summary.Consistent, summary.Updated, summary.UpdateFailed,
		summary.Deleted, summary.DeleteFailed, summary.Skipped)

	if cfg.TelegramEnabled() && summary.Changed() {
		tg, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn("telegram disabled", zap.Error(err))
		} else if err := tg.SendFixSummary(summary); err != nil {
			log.Warn("failed to send telegram summary", zap.Error(err))
		}
	}
	return nil
}
