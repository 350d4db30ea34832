// Package main is the entry point for the assistant API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/n0b0dy-ai/assistant-backend/internal/config"
	"github.com/n0b0dy-ai/assistant-backend/internal/handler"
	"github.com/n0b0dy-ai/assistant-backend/internal/llm"
	"github.com/n0b0dy-ai/assistant-backend/internal/middleware"
	"github.com/n0b0dy-ai/assistant-backend/internal/ocr"
	"github.com/n0b0dy-ai/assistant-backend/internal/rag"
	"github.com/n0b0dy-ai/assistant-backend/internal/service"
	"github.com/n0b0dy-ai/assistant-backend/internal/store"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
	"github.com/n0b0dy-ai/assistant-backend/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting assistant API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "assistant-backend", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to MongoDB for the record store
	mongoClient, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("failed to connect to MongoDB", zap.Error(err))
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	recordStore := store.NewStoreFromDatabase(mongoClient.Database(cfg.DatabaseName), log)

	// Pick the embedder: OpenAI when a key is configured, Gemini otherwise
	var embedder rag.Embedder
	if cfg.OpenAIAPIKey != "" {
		openAIEmbedder, err := rag.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Error("failed to create embedder", zap.Error(err))
			os.Exit(1)
		}
		embedder = openAIEmbedder
	} else {
		geminiEmbedder, err := rag.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Error("failed to create embedder", zap.Error(err))
			os.Exit(1)
		}
		defer geminiEmbedder.Close()
		embedder = geminiEmbedder
	}
	log.Info("embedder selected", zap.String("provider", embedder.Name()))

	// Vector index with SQLite persistence
	docStore, err := rag.NewDocumentStore(cfg.VectorDBPath)
	if err != nil {
		log.Error("failed to open document store", zap.Error(err))
		os.Exit(1)
	}
	defer docStore.Close()

	index, err := rag.NewIndex(embedder, docStore, cfg.CollectionName, log)
	if err != nil {
		log.Error("failed to build vector index", zap.Error(err))
		os.Exit(1)
	}

	// Hosted model gateway with per-mode credentials
	gateway := llm.NewGeminiGateway(cfg.ModeKey, cfg.GenerationModel, log)
	defer gateway.Close()

	// Services
	conversations := service.NewConversationStore()
	conversations.SeedDemoData()
	assistant := service.NewAssistant(gateway, index, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(conversations)
	conversationHandler := handler.NewConversationHandler(conversations, log)
	aiHandler := handler.NewAIHandler(assistant, conversations, log)
	recordHandler := handler.NewRecordHandler(recordStore, log)
	processor := ocr.NewProcessor(cfg.OCRLanguages)
	documentHandler := handler.NewDocumentHandler(index, assistant, processor, cfg.ChunkSize, cfg.ChunkOverlap, log)
	ocrHandler := handler.NewOCRHandler(processor, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/health", healthHandler.Health)

		// Conversations and messages
		r.Get("/conversations", conversationHandler.List)
		r.Get("/conversation/{id}", conversationHandler.Get)
		r.Get("/messages", conversationHandler.ListMessages)
		r.Post("/messages", conversationHandler.PostMessage)
		r.Get("/search", conversationHandler.Search)

		// Assistant
		r.Post("/ai-response", aiHandler.Respond)
		r.Get("/test-keys", aiHandler.TestKeys)

		// Vector index
		r.Post("/documents", documentHandler.Add)
		r.Post("/documents/file", documentHandler.AddFile)
		r.Get("/documents/stats", documentHandler.Stats)
		r.Post("/rag-query", documentHandler.Query)

		// OCR
		r.Post("/ocr", ocrHandler.Extract)

		// Record hierarchy
		r.Route("/titles", func(r chi.Router) {
			r.Post("/", recordHandler.CreateTitle)
			r.Get("/", recordHandler.ListTitles)
			r.Get("/{id}", recordHandler.GetTitle)
			r.Put("/{id}", recordHandler.UpdateTitle)
			r.Delete("/{id}", recordHandler.DeleteTitle)
			r.Get("/{id}/chats", recordHandler.ListChats)
		})
		r.Route("/chats", func(r chi.Router) {
			r.Post("/", recordHandler.CreateChat)
			r.Get("/{id}", recordHandler.GetChat)
			r.Delete("/{id}", recordHandler.DeleteChat)
			r.Get("/{id}/contexts", recordHandler.ListContexts)
		})
		r.Route("/contexts", func(r chi.Router) {
			r.Post("/", recordHandler.CreateContext)
			r.Get("/{id}", recordHandler.GetContext)
			r.Put("/{id}", recordHandler.UpdateContext)
			r.Delete("/{id}", recordHandler.DeleteContext)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
