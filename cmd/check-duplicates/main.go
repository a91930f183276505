package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-linkedin-sweeper/internal/browser"
	"go-linkedin-sweeper/internal/config"
	"go-linkedin-sweeper/internal/database"
	"go-linkedin-sweeper/internal/duplicates"
	"go-linkedin-sweeper/internal/linkedin"
	"go-linkedin-sweeper/internal/logger"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type CLIFlags struct {
	ConfigFile    string        `help:"Path to configuration file" default:"configs/config.yaml" short:"c"`
	Title         string        `help:"Job title to search for (partial match)" required:""`
	Company       string        `help:"Company name to search for (partial match)" required:""`
	Delay         time.Duration `help:"Pause between description fetches" default:"1s"`
	Browser       bool          `help:"Fetch descriptions through a logged-in Chromium instead of the guest API"`
	Headful       bool          `help:"Show the browser window (with --browser)"`
	ScreenshotDir string        `help:"Where to save screenshots of pages without a description (with --browser)" default:"logs/screenshots"`
}

func main() {
	var flags CLIFlags
	kctx := kong.Parse(&flags, kong.Description("Check whether stored jobs with the same title and company share one description."))
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
		if errors.Is(err, duplicates.ErrNoJobs) || errors.Is(err, duplicates.ErrNoDescriptions) {
			fmt.Printf("❌ %v\n", err)
			return
		}
		log.Error("duplicate check failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, flags CLIFlags, log *zap.Logger) error {
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

	var fetcher duplicates.DescriptionFetcher
	if flags.Browser {
		pm, err := browser.NewPlaywright(!flags.Headful)
		if err != nil {
			return err
		}
		defer pm.Close()

		bctx, err := pm.NewContext(cookies)
		if err != nil {
			return err
		}
		page, err := bctx.NewPage()
		if err != nil {
			return fmt.Errorf("failed to create new page: %w", err)
		}
		debugger, err := browser.NewScreenshotDebugger(flags.ScreenshotDir)
		if err != nil {
			return err
		}
		fetcher = browser.NewDescriptionFetcher(page, cfg.LinkedIn.BaseURL, debugger, log.Named("browser"))
	} else {
		client, err := linkedin.NewClient(cookies, cfg.LinkedIn.BaseURL, log.Named("linkedin"))
		if err != nil {
			return err
		}
		fetcher = client
	}

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	fmt.Printf("🔍 Querying database for '%s' at '%s'...\n", flags.Title, flags.Company)
	report, err := duplicates.NewChecker(repo, fetcher, flags.Delay, log.Named("duplicates")).
		Check(ctx, flags.Title, flags.Company)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Found %d jobs in DB.\n", len(report.Jobs))
	for _, id := range report.Missing {
		fmt.Printf("   ⚠️ Could not fetch description for %s\n", id)
	}
	fmt.Printf("\n📊 Comparing against base job %s (Length: %d):\n", report.BaseJobID, report.BaseLength)
	for _, c := range report.Comparisons {
		verdict := "MATCH ✅"
		if !c.Match {
			verdict = "NO MATCH ❌"
		}
		fmt.Printf("   👉 %s: %s (Length: %d)\n", c.JobID, verdict, c.Length)
		if !c.Match {
			fmt.Printf("      Diff starts: %s... vs ...%s\n", c.Snippet, report.BaseSnippet)
		}
	}
	return nil
}
