package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-linkedin-sweeper/internal/browser"
	"go-linkedin-sweeper/internal/config"
	"go-linkedin-sweeper/internal/database"
	"go-linkedin-sweeper/internal/filter"
	"go-linkedin-sweeper/internal/linkedin"
	"go-linkedin-sweeper/internal/logger"
	"go-linkedin-sweeper/internal/metrics"
	"go-linkedin-sweeper/internal/processor"
	"go-linkedin-sweeper/internal/reporter"
	"go-linkedin-sweeper/internal/runner"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type CLIFlags struct {
	ConfigFile string `help:"Path to configuration file" default:"configs/config.yaml" short:"c"`
	Keywords   string `help:"Search keywords (overrides config)" short:"k"`
	Location   string `help:"Search location (overrides config)" short:"l"`
	Limit      int    `help:"Stop after this many processed jobs, 0 = unlimited" default:"-1"`
	MaxPages   int    `help:"Stop after this many pages, 0 = until results run out" default:"-1"`
	Migrate    bool   `help:"Create database tables before sweeping"`
}

func main() {
	var flags CLIFlags
	kctx := kong.Parse(&flags, kong.Description("Dismiss LinkedIn jobs that match the title and company blocklists."))
	if kctx.Error != nil {
		fmt.Printf("Error parsing flags: %v\n", kctx.Error)
		os.Exit(1)
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

	if err := run(cfg, flags, log); err != nil {
		log.Error("sweep failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, flags CLIFlags, log *zap.Logger) error {
	if flags.Keywords != "" {
		cfg.LinkedIn.Keywords = flags.Keywords
	}
	if flags.Location != "" {
		cfg.LinkedIn.Location = flags.Location
	}
	if flags.Limit >= 0 {
		cfg.LinkedIn.LimitJobs = flags.Limit
	}
	if flags.MaxPages >= 0 {
		cfg.LinkedIn.MaxPages = flags.MaxPages
	}

	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if err := cfg.RequireLinkedIn(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cookies, err := browser.LoadLinkedInCookies(cfg.LinkedIn.Cookies, cfg.LinkedIn.CookiesPath)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrMissingConfig, err)
	}
	log.Info("loaded linkedin cookies", zap.Int("count", len(cookies)))

	client, err := linkedin.NewClient(cookies, cfg.LinkedIn.BaseURL, log.Named("linkedin"))
	if err != nil {
		return err
	}

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	if flags.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		log.Info("database migrated")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	blocklist := filter.NewBlocklist(cfg.LinkedIn.DismissKeywords, cfg.LinkedIn.DismissCompanies)
	log.Info("blocklist ready",
		zap.Strings("titles", blocklist.Titles()),
		zap.Strings("companies", blocklist.Companies()))

	paced := runner.NewPacedDismisser(client, cfg.LinkedIn.DismissDelay)
	proc := processor.New(repo, paced, blocklist, log.Named("processor"))
	r := runner.New(client, proc, m, log.Named("runner"))

	summary, runErr := r.Run(ctx, runner.Options{
		Query: linkedin.SearchQuery{
			Keywords: cfg.LinkedIn.Keywords,
			Location: cfg.LinkedIn.Location,
		},
		PageSize:  cfg.LinkedIn.PageSize,
		MaxPages:  cfg.LinkedIn.MaxPages,
		LimitJobs: cfg.LinkedIn.LimitJobs,
		PageDelay: cfg.LinkedIn.PageDelay,
	})

	st := summary.Stats
	fmt.Printf("\n📊 Run %s: %d pages, processed %d, dismissed %d (title %d, company %d), skipped %d, kept %d, failed %d, saved %d\n",
		summary.RunID, summary.Pages, st.Processed, st.Dismissed, st.DismissedByTitle, st.DismissedByCompany,
		st.Skipped, st.Kept, st.Failed, st.Saved)

	if cfg.TelegramEnabled() {
		tg, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn("telegram disabled", zap.Error(err))
		} else {
			if runErr != nil {
				if err := tg.SendError(runErr); err != nil {
					log.Warn("failed to send telegram error", zap.Error(err))
				}
			}
			if err := tg.SendSummary(summary); err != nil {
				log.Warn("failed to send telegram summary", zap.Error(err))
			}
		}
	}

	return runErr
}
