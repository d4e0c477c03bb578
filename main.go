package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"teamhood-mcp-server/internal/application"
	"teamhood-mcp-server/internal/domain"
	"teamhood-mcp-server/internal/infrastructure"
	"teamhood-mcp-server/internal/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file (optional, environment variables suffice)")
	flag.Parse()

	// stdout belongs to the stdio transport, so all logging goes to stderr.
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	config, err := domain.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(config.Logging.Level)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid log level")
	}
	logger = logger.Level(level)

	logger.Info().
		Str("base_url", config.Teamhood.BaseURL).
		Str("transport", config.Transport.Type).
		Msg("configuration loaded")

	m := metrics.New()
	mapper := domain.NewResponseMapper()

	httpClient := &http.Client{Timeout: config.Teamhood.Timeout()}
	client := infrastructure.NewTeamhoodClient(config.Teamhood.BaseURL, config.Teamhood.APIKey, httpClient, m, logger)

	router := application.NewRequestRouter(
		application.NewWorkspaceHandler(client, mapper),
		application.NewBoardHandler(client, mapper),
		application.NewItemHandler(client, mapper),
		application.NewAttachmentHandler(client, mapper),
		application.NewReportingHandler(client, mapper),
	)

	var transport domain.Transport
	switch config.Transport.Type {
	case domain.TransportStdio:
		transport = domain.NewStdioTransport(logger)
	case domain.TransportHTTP:
		transport = domain.NewHTTPTransport(config.Transport.HTTP.Host, config.Transport.HTTP.Port, m.Handler(), logger)
	default:
		logger.Fatal().Str("type", config.Transport.Type).Msg("invalid transport type")
	}

	server := application.NewServer(transport, router, mapper, m, config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Wait for shutdown signal or startup error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	case err := <-errChan:
		logger.Error().Err(err).Msg("server error")
		cancel()
		if err := server.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing server")
		}
		os.Exit(1)
	}

	if err := server.Close(); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
		os.Exit(1)
	}

	logger.Info().Msg("server shutdown complete")
}
