package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chatorder-service/config"
	"chatorder-service/internal/cache"
	"chatorder-service/internal/ledger"
	"chatorder-service/internal/linebot"
	"chatorder-service/internal/logger"
	"chatorder-service/internal/producer"
	"chatorder-service/internal/service"
	"chatorder-service/internal/transcribe"
	transporthttp "chatorder-service/internal/transport/http"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	sheets := ledger.NewSheetsClient(cfg.Google, log)

	var events service.EventBus
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		p := producer.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()
		events = p
	} else {
		log.Warn("kafka not configured, order events disabled")
	}

	svc := service.NewOrderService(sheets, sheets, events, log)
	transcriber := transcribe.NewWhisperTranscriber(cfg.Speech.APIKey)
	lineClient := linebot.NewClient(cfg.Line.ChannelAccessToken)

	var dedupe transporthttp.Deduper
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTLSeconds, log)
		if err != nil {
			log.Warn("redis unavailable, webhook dedupe disabled", zap.Error(err))
		} else {
			defer rc.Close()
			dedupe = rc
		}
	}

	h := transporthttp.NewWebhookHandler(svc, transcriber, lineClient, lineClient, sheets, dedupe, log)
	r := transporthttp.Router(h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("webhook server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to run http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down webhook server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("webhook server stopped gracefully")
}
