package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/reconcile"
	"github.com/jonathan/hiring-tracker/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the hiring REST API. Candidate emails are
delivered in the background and projection repair runs on the configured schedule.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	jwtConfig, err := cfg.JWT()
	if err != nil {
		return err
	}
	passwordConfig, err := cfg.Passwords()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if serveMigrate {
		applied, err := database.Migrate(ctx)
		if err != nil {
			return err
		}
		for _, v := range applied {
			log.Printf("[db] applied migration %s", v)
		}
	}

	sender, err := newSender(cfg.SMTP)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(notify.NewRenderer(cfg.CompanyName, time.UTC).WithPortalURL(cfg.PublicBaseURL), sender)

	opts := []ats.Option{ats.WithUploadDir(cfg.UploadDir)}
	matcher, llmClient, err := newMatcher(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	if matcher != nil {
		defer func() { _ = llmClient.Close() }()
		opts = append(opts, ats.WithMatchScorer(matcher))
	}
	service := ats.NewService(database, dispatcher, opts...)

	runner := reconcile.NewRunner(database, 0)
	if err := runner.Start(cfg.ReconcileSchedule); err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:         cfg.Port,
		CORSOrigin:   cfg.CORSOrigin,
		CookieSecure: cfg.CookieSecure,
		JWT:          jwtConfig,
		Password:     passwordConfig,
		RateLimit:    rateLimitConfig(cfg.RateLimit),
	}, service, database)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	runErr := srv.Run(ctx)

	// Requests have drained; flush queued mail, then let a running repair finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Printf("[notify] %v", err)
	}
	if err := runner.Stop(shutdownCtx); err != nil {
		log.Printf("[reconcile] %v", err)
	}
	return runErr
}
