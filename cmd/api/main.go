package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/haggle/internal/app"
	"github.com/jwebster45206/haggle/internal/config"
	"github.com/jwebster45206/haggle/internal/handlers"
	"github.com/jwebster45206/haggle/internal/logger"
	"github.com/jwebster45206/haggle/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Haggle API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	rt, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to start", "error", err)
		os.Exit(1)
	}

	var async *handlers.AsyncQueue
	var subscriber handlers.Subscriber
	if rt.Queue != nil {
		async = handlers.NewAsyncQueue(rt.Queue, rt.Broadcaster, log)
		subscriber = rt.Broadcaster
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(rt.Storage, cfg.LLMProvider, log))

	shopsHandler := handlers.NewShopsHandler(rt.Storage, log)
	mux.Handle("/v1/shops", shopsHandler)
	mux.Handle("/v1/shops/", shopsHandler)

	sessionsHandler := handlers.NewSessionsHandler(rt.Negotiator, async, log)
	mux.Handle("/v1/sessions", sessionsHandler)
	mux.Handle("/v1/sessions/", sessionsHandler)

	mux.Handle("/v1/chat", handlers.NewChatHandler(rt.Negotiator, async, log))
	mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(subscriber, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the event stream stays open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if err := rt.Close(); err != nil {
		log.Error("Error closing connections", "error", err)
	}

	log.Info("Server exited")
}
