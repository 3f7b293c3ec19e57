package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"viaggio/internal/ai"
	"viaggio/internal/ai/mock"
	"viaggio/internal/ai/openai"
	"viaggio/internal/amqp"
	"viaggio/internal/assistant"
	"viaggio/internal/cache"
	"viaggio/internal/cli"
	"viaggio/internal/core"
	apphttp "viaggio/internal/http"
	"viaggio/internal/log"
	"viaggio/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional: without it expenses stay pending until the worker's
	// rescan finds them.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, expense sync deferred to worker rescan", log.FieldError, err)
		} else {
			defer amqpClient.Close()
		}
	}

	expenses := services.NewExpenseService(repo, amqpClient)
	rates := core.NewNormalizer(core.DefaultRates)

	// One API key flag decides mock mode for every AI capability.
	var (
		transcriber ai.Transcriber
		completer   ai.ChatCompleter
		speaker     ai.Speaker
	)
	if cfg.MockMode() {
		logger.Warn("OPENAI_API_KEY not set, running in mock mode")
		transcriber = mock.Transcriber{}
		speaker = &mock.Speaker{}
	} else {
		client := openai.NewClient(openai.Config{
			BaseURL:         cfg.OpenAIBaseURL,
			APIKey:          cfg.OpenAIAPIKey,
			ChatModel:       cfg.ChatModel,
			TranscribeModel: cfg.TranscribeModel,
			SpeechModel:     cfg.SpeechModel,
			SpeechVoice:     cfg.SpeechVoice,
		})
		transcriber, completer, speaker = client, client, client
	}

	summarizer := assistant.NewSummaryService(repo, repo, completer, rates, cfg.HomeCurrency)
	executor := assistant.NewExecutor(repo, expenses, rates, summarizer)
	pipeline := assistant.NewPipeline(cfg.MockMode(), transcriber, assistant.NewIntentParser(completer), executor, speaker, repo, logger)

	cacheManager := cache.NewManager()
	cacheManager.Register(summarizer)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, repo, expenses, pipeline, summarizer, cfg.HomeCurrency, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting viaggio server", "port", cfg.Port, "mock_mode", cfg.MockMode())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
