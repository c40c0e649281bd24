package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mzhao/synogpt/internal/archive"
	"github.com/mzhao/synogpt/internal/config"
	"github.com/mzhao/synogpt/internal/conversation"
	"github.com/mzhao/synogpt/internal/events"
	"github.com/mzhao/synogpt/internal/httpapi"
	"github.com/mzhao/synogpt/internal/observability"
	"github.com/mzhao/synogpt/internal/provider"
	"github.com/mzhao/synogpt/internal/synology"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.SynologyIncomingURL == "" {
		log.Fatalf("SYNOLOGY_INCOMING_URL is required")
	}
	if cfg.SynologyWebhookToken == "" {
		log.Fatalf("SYNOLOGY_WEBHOOK_TOKEN is required")
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	archiveStore, err := archive.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("archive store init failed: %v", err)
	}
	defer archiveStore.Close()

	var completer provider.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = provider.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		log.Printf("completion provider: openai (model %s)", cfg.OpenAIModel)
	} else {
		completer = provider.NewMockProvider()
		log.Printf("completion provider: mock (no OPENAI_API_KEY)")
	}

	resetKeywords := cfg.ResetKeywords
	if len(resetKeywords) == 0 {
		resetKeywords = conversation.DefaultResetKeywords
	}

	hub := events.NewHub()
	engine := conversation.NewEngine(
		conversation.NewMemoryStore(),
		conversation.NewPolicy(resetKeywords, cfg.MaxConversationLen, cfg.MaxTimeGap()),
		conversation.NewAssembler(cfg.SystemPrompt, cfg.SystemPromptEnabled),
		completer,
		cfg.OpenAIModel,
		cfg.OpenAITemperature,
		archiveStore,
		hub,
		metrics,
	)
	sender := synology.NewSender(cfg.SynologyIncomingURL)

	api := httpapi.New(cfg, engine, sender, hub, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s (reset keywords: %s)", cfg.BindAddr, strings.Join(resetKeywords, ", "))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
