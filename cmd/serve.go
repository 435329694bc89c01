package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/assistant"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/availability"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/booking"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/calendar"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/config"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/instrumentation"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/logging"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/router"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/server"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/tools/booking_tools"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		webhookAddr    string
		webhookSecret  string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the receptionist server",
		Long: `Start the scheduling backend that answers availability questions and books
appointments against the clinic's Google Calendar.

Supports multiple transport types:
  - webhook: HTTP webhook endpoints for conversational AI platforms (default)
  - stdio: MCP server over standard input/output for AI assistants

Configuration is read from receptionist.yaml, RECEPTIONIST_* environment
variables and a local .env file. A Google service-account credentials file
is required for calendar access; a Gemini API key is optional and only
enables free-form replies on the /webhook endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, debugMode, webhookAddr, webhookSecret, metricsEnabled, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "webhook", "Transport type: webhook or stdio")
	cmd.Flags().StringVar(&webhookAddr, "webhook-addr", server.DefaultWebhookAddr, "Webhook server address (for webhook transport)")
	cmd.Flags().StringVar(&webhookSecret, "webhook-secret", "", "Shared secret required in the X-Webhook-Secret header. Can also use RECEPTIONIST_WEBHOOK_SECRET env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, webhookAddr, webhookSecret string, metricsEnabled bool, metricsAddr string) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Local development keeps credentials in a .env file; a missing file
	// is the normal production case.
	_ = godotenv.Load()

	logger := newLogger(debugMode)
	slog.SetDefault(logger)

	// Load metrics config from environment if not set via flags
	if os.Getenv("METRICS_ENABLED") == "false" {
		metricsEnabled = false
	}
	if metricsAddr == "" || metricsAddr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsAddr = addr
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if webhookSecret == "" {
		webhookSecret = cfg.WebhookSecret
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during instrumentation shutdown", logging.Err(err))
		}
	}()

	cat, err := catalog.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build slot catalog: %w", err)
	}

	gateway, err := calendar.NewClient(shutdownCtx, cfg, logger, provider.Metrics())
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	avail := availability.NewEngine(gateway, cat, logger, provider.Metrics())
	book := booking.NewEngine(gateway, cat, logger, provider.Metrics())
	rt := router.New(avail, book, logger, provider.Metrics())

	// The assistant is optional: without a Gemini key the /webhook endpoint
	// still handles booking intents and falls back to a canned reply for
	// everything else.
	var responder server.Responder
	if cfg.GeminiAPIKey != "" {
		asst, err := assistant.New(shutdownCtx, cfg, logger)
		if err != nil {
			logger.Warn("Assistant unavailable, free-form replies disabled", logging.Err(err))
		} else {
			defer asst.Close()
			responder = asst
		}
	} else {
		logger.Info("No Gemini API key configured, free-form replies disabled")
	}

	sc := server.NewServerContext(shutdownCtx, server.Dependencies{
		Catalog:      cat,
		Availability: avail,
		Booking:      book,
		Router:       rt,
		Assistant:    responder,
		Metrics:      provider.Metrics(),
		Logger:       logger,
	})
	defer sc.Shutdown()

	// Start metrics server if enabled and not in stdio mode
	if transport != "stdio" && metricsEnabled && provider.Enabled() {
		metricsServer, err := server.NewMetricsServer(sc, server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("Error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	switch transport {
	case "webhook":
		return runWebhookServer(shutdownCtx, sc, webhookAddr, webhookSecret)
	case "stdio":
		return runStdioServer(sc)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: webhook, stdio)", transport)
	}
}

func runWebhookServer(ctx context.Context, sc *server.ServerContext, addr, secret string) error {
	health := server.NewHealthChecker(sc)
	ws := server.NewWebhookServer(sc, health, addr, secret)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := ws.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()
	health.SetReady(true)

	select {
	case <-ctx.Done():
		sc.Logger().Info("Shutdown signal received")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := ws.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("webhook server stopped with error: %w", err)
		}
		return nil
	}
}

func runStdioServer(sc *server.ServerContext) error {
	mcpSrv := mcpserver.NewMCPServer("receptionist", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := booking_tools.RegisterBookingTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register booking tools: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// newLogger builds the process logger. Logs always go to stderr: the stdio
// transport owns stdout for the MCP protocol.
func newLogger(debugMode bool) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
