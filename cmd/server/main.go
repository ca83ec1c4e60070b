package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/knowledge-engine/academic-assistant/internal/api"
	"github.com/knowledge-engine/academic-assistant/internal/config"
	"github.com/knowledge-engine/academic-assistant/internal/corpus"
	"github.com/knowledge-engine/academic-assistant/internal/engine"
	"github.com/knowledge-engine/academic-assistant/internal/logging"
	"github.com/knowledge-engine/academic-assistant/internal/provider"
	"github.com/knowledge-engine/academic-assistant/internal/search"
)

func main() {
	// 1. Config
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Logging
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	entry := logger.WithField("service", "academic-assistant")

	entry.Info("Starting Academic Assistant API Service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Corpus
	source, err := corpus.Open(cfg.Corpus.Path, entry.WithField("component", "corpus"))
	if err != nil {
		entry.Fatalf("Failed to open corpus: %v", err)
	}

	// 4. Search Index (Memory)
	vectorStore := search.NewVectorStore(
		search.WithThreshold(cfg.Retrieval.Threshold),
		search.WithDefaultTopK(cfg.Retrieval.TopK),
	)

	// 5. LLM
	llm, err := provider.New(ctx, cfg.LLM)
	if err != nil {
		entry.WithError(err).Warn("LLM provider unavailable; answer generation disabled")
		llm = provider.Disabled{}
	}

	// 6. Engine
	assistant := engine.NewAssistant(cfg, entry.WithField("component", "engine"), source, vectorStore, llm)
	if _, err := assistant.Reload(ctx); err != nil {
		entry.Fatalf("Failed to build search index: %v", err)
	}

	// 7. API Server
	server := api.NewServer(assistant, entry.WithField("component", "api"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			entry.Fatal(err)
		}
	case <-ctx.Done():
		entry.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			entry.WithError(err).Error("Graceful shutdown failed")
		}
	}
}
