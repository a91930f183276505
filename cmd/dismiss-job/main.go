package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-linkedin-sweeper/internal/browser"
	"go-linkedin-sweeper/internal/config"
	"go-linkedin-sweeper/internal/linkedin"
	"go-linkedin-sweeper/internal/logger"
	"go-linkedin-sweeper/internal/models"
	"go-linkedin-sweeper/internal/processor"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type CLIFlags struct {
	ConfigFile string `help:"Path to configuration file" default:"configs/config.yaml" short:"c"`
	JobID      string `arg:"" help:"LinkedIn job id to dismiss"`
	URN        string `help:"Dismiss URN; built from the job id when empty"`
}

func main() {
	var flags CLIFlags
	kctx := kong.Parse(&flags, kong.Description("Dismiss a single LinkedIn job, to verify cookies and the dismiss call."))
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

	if err := cfg.RequireLinkedIn(); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	cookies, err := browser.LoadLinkedInCookies(cfg.LinkedIn.Cookies, cfg.LinkedIn.CookiesPath)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	client, err := linkedin.NewClient(cookies, cfg.LinkedIn.BaseURL, log.Named("linkedin"))
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	job := models.JobListing{JobID: flags.JobID, DismissURN: flags.URN}
	urn := processor.DismissURN(job)
	fmt.Printf("🚀 Attempting to dismiss Job ID: %s\n", job.JobID)
	fmt.Printf("📦 Dismiss URN: %s\n", urn)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ok, err := client.Dismiss(ctx, job, urn)
	if err != nil || !ok {
		log.Error("dismiss failed", zap.Error(err))
		fmt.Println("❌ FAILURE: Dismissal failed. Check logs above.")
		os.Exit(1)
	}
	fmt.Println("✅ SUCCESS: Job dismissed correctly!")
}
