package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/odyssey-erp/odyssey-backoffice/internal/apiclient"
	"github.com/odyssey-erp/odyssey-backoffice/internal/app"
	"github.com/odyssey-erp/odyssey-backoffice/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return nil
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var branch, screen string
	flagSet := pflag.NewFlagSet("backoffice", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "base URL of the back-office API")
	flagSet.StringVar(&branch, "branch", "", "initial branch code (default: the default branch)")
	flagSet.StringVar(&screen, "screen", "branches", "initial screen: branches, customers, products or categories")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logFile, err := app.OpenLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := app.NewLogger(logFile, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.APIURL,
		Token:   cfg.APIToken,
		Timeout: cfg.RequestTimeout,
		Retries: cfg.APIRetries,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	model := tui.New(ctx, tui.NewBackend(client), tui.Options{
		Logger:        logger,
		Locale:        cfg.Locale,
		PageSize:      cfg.DefaultPageSize,
		Debounce:      cfg.SearchDebounce,
		FetchTimeout:  cfg.RequestTimeout,
		InitialBranch: branch,
		InitialScreen: screen,
	})
	defer model.Close()

	logger.Info("starting back-office", slog.String("api_url", cfg.APIURL))
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
