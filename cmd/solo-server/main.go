// Package main provides the entry point for the Solo in Public server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/duhenri9/solo-in-public/internal/assistant"
	"github.com/duhenri9/solo-in-public/internal/config"
	"github.com/duhenri9/solo-in-public/internal/content"
	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/memory"
	"github.com/duhenri9/solo-in-public/internal/metrics"
	"github.com/duhenri9/solo-in-public/internal/model"
	"github.com/duhenri9/solo-in-public/internal/server"
	"github.com/duhenri9/solo-in-public/internal/store"
	"github.com/duhenri9/solo-in-public/internal/telemetry"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Dual output: stderr text + file JSON.
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel())
	defer func() { _ = cleanup() }()
	slog.SetDefault(logger)

	logger.Info("solo-server starting",
		"version", version,
		"port", cfg.Port,
		"surrealdb_url", cfg.SurrealDBURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Knowledge retrieval: embedded corpus, optionally a custom file,
	// optionally upgraded to embedding search, optionally remote.
	corpus, err := loadCorpus(cfg)
	if err != nil {
		logger.Error("failed to load knowledge corpus", "error", err)
		os.Exit(1)
	}
	searcher := buildSearcher(ctx, cfg, corpus, logger)

	// Model providers. Keys left empty disable the provider; with no
	// provider at all the offline demo model answers.
	premium, secondary := buildGenerators(ctx, cfg, logger)
	offline := model.NewOffline(searcher)

	// Persistence: SurrealDB when configured, process memory otherwise.
	var (
		repo     store.Repository
		sessions memory.Store
	)
	if cfg.SurrealDBURL != "" {
		client, err := store.NewClient(ctx, store.SurrealConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close(context.Background()) }()

		if err := client.InitSchema(ctx); err != nil {
			logger.Error("failed to initialize database schema", "error", err)
			os.Exit(1)
		}
		repo = store.NewSurrealRepository(client)
		sessions = store.NewSessionStore(client, cfg.MemoryWindow)
	} else {
		logger.Info("no SurrealDB configured, running in-memory")
		repo = store.NewMemoryRepository()
		sessions = memory.NewLocalStore(cfg.MemoryWindow)
	}
	if cfg.MemoryServiceURL != "" {
		sessions = memory.NewFallbackStore(memory.NewRemoteStore(cfg.MemoryServiceURL), sessions, logger)
	}

	collector := metrics.NewCollector()
	router := assistant.NewRouter(premium, secondary, offline, collector)
	orchestrator := assistant.NewOrchestrator(
		sessions,
		searcher,
		router,
		assistant.NewNotifier(cfg.HandoverIntakeURL, logger),
		telemetry.NewRecorder(cfg.TelemetrySinkURL, logger),
		cfg.KnowledgeLimit,
		logger,
	)

	contentGen := secondary
	if contentGen == nil {
		contentGen = premium
	}
	contentSvc := content.NewService(repo, contentGen, searcher, cfg.ContentMonthlyLimit, logger)

	handler := server.NewHandler(
		orchestrator, searcher, sessions, repo, collector, contentSvc,
		premium, secondary, offline, logger,
	)
	srv := server.New(":"+cfg.Port, handler, []string{cfg.ClientOrigin})

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func loadCorpus(cfg config.Config) (*knowledge.Corpus, error) {
	if cfg.KnowledgePath != "" {
		return knowledge.LoadFile(cfg.KnowledgePath)
	}
	return knowledge.Default()
}

// buildSearcher upgrades the keyword corpus to embedding search when an
// OpenAI key is configured, and defers to a remote knowledge service
// when one is set. Every upgrade keeps the previous strategy as
// fallback.
func buildSearcher(ctx context.Context, cfg config.Config, corpus *knowledge.Corpus, logger *slog.Logger) knowledge.Searcher {
	var searcher knowledge.Searcher = corpus

	if cfg.OpenAIAPIKey != "" {
		llm, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
		)
		if err != nil {
			logger.Warn("embedding client unavailable, keeping keyword search", "error", err)
		} else if embedder, err := embeddings.NewEmbedder(llm); err != nil {
			logger.Warn("embedder setup failed, keeping keyword search", "error", err)
		} else if index, err := knowledge.NewSemanticIndex(ctx, corpus, embedder, logger); err != nil {
			logger.Warn("semantic index build failed, keeping keyword search", "error", err)
		} else {
			logger.Info("semantic knowledge search enabled", "model", cfg.EmbeddingModel)
			searcher = index
		}
	}

	if cfg.KnowledgeServiceURL != "" {
		searcher = knowledge.NewRemoteSearcher(cfg.KnowledgeServiceURL, searcher, logger)
	}
	return searcher
}

// buildGenerators wires the hosted providers: OpenAI fills the premium
// slot, Anthropic the secondary one, and Bedrock takes whichever slot
// is still empty.
func buildGenerators(ctx context.Context, cfg config.Config, logger *slog.Logger) (premium, secondary model.Generator) {
	if cfg.OpenAIAPIKey != "" {
		gen, err := model.NewOpenAI(cfg.OpenAIAPIKey, cfg.PremiumModel)
		if err != nil {
			logger.Warn("openai provider unavailable", "error", err)
		} else {
			premium = gen
		}
	}

	if cfg.AnthropicAPIKey != "" {
		gen, err := model.NewAnthropic(cfg.AnthropicAPIKey, cfg.SecondaryModel)
		if err != nil {
			logger.Warn("anthropic provider unavailable", "error", err)
		} else {
			// Reported under the public name regardless of the exact
			// provider model id.
			secondary = model.Named(gen, "claude-3.5-haiku")
		}
	}

	if cfg.BedrockModel != "" && (premium == nil || secondary == nil) {
		gen, err := model.NewBedrock(ctx, cfg.BedrockModel)
		if err != nil {
			logger.Warn("bedrock provider unavailable", "error", err)
		} else if secondary == nil {
			secondary = gen
		} else {
			premium = gen
		}
	}

	logger.Info("model providers configured",
		"premium", generatorName(premium),
		"secondary", generatorName(secondary),
	)
	return premium, secondary
}

func generatorName(g model.Generator) string {
	if g == nil {
		return "none"
	}
	return g.Name()
}
