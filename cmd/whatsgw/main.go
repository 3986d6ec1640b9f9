package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattjoyce/whatsgw/internal/config"
	"github.com/mattjoyce/whatsgw/internal/event"
	"github.com/mattjoyce/whatsgw/internal/forward"
	"github.com/mattjoyce/whatsgw/internal/log"
	"github.com/mattjoyce/whatsgw/internal/webhook"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	// --- NOUNS ---
	case "system":
		os.Exit(runSystemNoun(args))
	case "config":
		os.Exit(runConfigNoun(args))

	// --- ROOT ALIASES ---
	case "start":
		os.Exit(runStart(args))
	case "version":
		fmt.Printf("whatsgw version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`whatsgw - WhatsApp webhook receiver and automation forwarder

Usage:
  whatsgw <noun> <action> [flags]

System Commands:
  system start      Start the webhook receiver in foreground

Config Commands:
  config check      Load and validate configuration
  config lock       Authorize current config state (update integrity hash)

General:
  version           Show version information
  help              Show this help message

Environment:
  WHATSAPP_WEBHOOK_SECRET            Shared HMAC secret (optional)
  N8N_WHATSAPP_MESSAGE_WEBHOOK_URL   Downstream URL for message events (optional)
  N8N_ALERT_WEBHOOK_URL              Downstream URL for connectivity alerts (optional)
`)
}

// --- NOUN DISPATCHERS ---

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: whatsgw system <action>")
		fmt.Fprintln(os.Stderr, "Actions: start")
		return 1
	}
	if isHelpToken(args[0]) {
		fmt.Println("Usage: whatsgw system <action>")
		fmt.Println("Actions: start")
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		return runStart(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: whatsgw config <action> [flags]")
		fmt.Fprintln(os.Stderr, "Actions: check, lock")
		return 1
	}
	if isHelpToken(args[0]) {
		fmt.Println("Usage: whatsgw config <action> [flags]")
		fmt.Println("Actions: check, lock")
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		return runConfigCheck(actionArgs)
	case "lock":
		return runConfigLock(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

// --- ACTION IMPLEMENTATIONS ---

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("whatsgw starting", "version", version, "listen", cfg.Listen)

	webhookConfig, err := webhook.FromGlobalConfig(cfg)
	if err != nil {
		logger.Error("failed to configure webhook server", "error", err)
		return 1
	}

	forwardTimeout, err := config.ParseTimeout(cfg.Forward.Timeout)
	if err != nil {
		logger.Error("invalid forward timeout", "error", err)
		return 1
	}

	forwarder := forward.New(forwardTimeout, log.WithComponent("forward"))
	router := event.NewRouter(
		forwarder,
		cfg.Forward.MessageURL,
		cfg.Forward.AlertURL,
		log.WithComponent("event"),
	)
	server := webhook.New(webhookConfig, router, log.WithComponent("webhook"))

	if cfg.Forward.MessageURL == "" {
		logger.Warn("message webhook url not configured, message forwarding disabled")
	}
	if cfg.Forward.AlertURL == "" {
		logger.Warn("alert webhook url not configured, disconnect alerts disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && err != context.Canceled {
			errCh <- err
		}
	}()

	logger.Info("whatsgw running (press Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errCh:
		logger.Error("webhook server failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("whatsgw stopped")
	return 0
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	resolved := *configPath
	if resolved == "" {
		resolved = config.DiscoverConfigPath()
	}

	cfg, err := config.Load(resolved)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config check FAILED: %v\n", err)
		return 1
	}

	if resolved == "" {
		fmt.Println("No config file found; using defaults with environment overrides.")
	} else {
		fmt.Printf("Config file: %s\n", resolved)
	}
	fmt.Printf("Listen: %s\n", cfg.Listen)
	fmt.Printf("Webhook path: %s\n", cfg.Webhook.Path)
	fmt.Printf("Signature check: %v\n", cfg.Webhook.Secret != "")
	fmt.Printf("Message forwarding: %v\n", cfg.Forward.MessageURL != "")
	fmt.Printf("Alert forwarding: %v\n", cfg.Forward.AlertURL != "")
	fmt.Println("Status: Configuration check PASSED.")
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	dryRun := fs.Bool("dry-run", false, "Compute the hash without writing .checksums")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	resolved := *configPath
	if resolved == "" {
		resolved = config.DiscoverConfigPath()
	}
	if resolved == "" {
		fmt.Fprintln(os.Stderr, "No config file found to lock (use --config PATH)")
		return 1
	}

	checksumPath, hash, err := config.GenerateChecksums(resolved, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config: %v\n", err)
		return 1
	}

	if *dryRun {
		fmt.Printf("Dry run: %s would be written with hash %s\n", checksumPath, hash)
	} else {
		fmt.Printf("Locked %s (hash %s)\n", resolved, hash)
	}
	return 0
}
