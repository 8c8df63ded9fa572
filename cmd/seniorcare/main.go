package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gFigueiredoo/trab-iot/internal/config"
	"github.com/gFigueiredoo/trab-iot/internal/live"
	"github.com/gFigueiredoo/trab-iot/internal/logger"
	"github.com/gFigueiredoo/trab-iot/internal/metrics"
	"github.com/gFigueiredoo/trab-iot/internal/pipeline"
	"github.com/gFigueiredoo/trab-iot/internal/store"
	apihttp "github.com/gFigueiredoo/trab-iot/internal/transport/http"
	"github.com/gFigueiredoo/trab-iot/internal/transport/mqtt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using system environment variables")
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.NewPostgresStore(ctx, cfg)
	if err != nil {
		zlog.Fatal("postgres init failed", zap.Error(err))
	}
	defer db.Close()

	rds, err := store.NewRedisStore(ctx, cfg)
	if err != nil {
		zlog.Fatal("redis init failed", zap.Error(err))
	}
	defer rds.Close()

	st := store.NewCompositeStore(db, rds)
	stats := metrics.NewStats()

	hub := live.NewHub(zlog)
	go hub.Run(ctx)

	mirror := live.NewMirror(rds.Client(), hub, zlog)
	go mirror.Run(ctx)

	ingestor := pipeline.NewIngestor(st, stats, zlog, cfg.SaveQueueSize)
	ingestorDone := make(chan struct{})
	go func() {
		defer close(ingestorDone)
		ingestor.Run(ctx)
	}()

	// random suffix so parallel instances don't evict each other's session
	clientID := cfg.MQTTClientID + "_" + uuid.NewString()[:8]
	mq, err := mqtt.NewClient(mqtt.Options{
		Broker:             cfg.MQTTBroker,
		ClientID:           clientID,
		Username:           cfg.MQTTUsername,
		Password:           cfg.MQTTPassword,
		OnConnectionChange: stats.SetConnected,
	}, zlog)
	if err != nil {
		zlog.Fatal("mqtt connect failed", zap.Error(err))
	}

	if err := mq.Subscribe(cfg.MQTTTopic, 0, ingestor.HandleMessage); err != nil {
		zlog.Fatal("mqtt subscribe failed", zap.String("topic", cfg.MQTTTopic), zap.Error(err))
	}

	handler := apihttp.NewHandler(st, stats, hub, zlog, cfg.DefaultDeviceID, cfg.MQTTTopic)
	srv := apihttp.NewServer(":"+cfg.HTTPPort, handler.Routes(), zlog)
	srv.Start()

	zlog.Info("seniorcare backend running",
		zap.String("http_port", cfg.HTTPPort),
		zap.String("mqtt_broker", cfg.MQTTBroker),
		zap.String("mqtt_topic", cfg.MQTTTopic),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zlog.Info("shutting down")

	// stop inbound first, then let the ingestor drain its queue
	mq.Disconnect()
	cancel()
	select {
	case <-ingestorDone:
	case <-time.After(5 * time.Second):
		zlog.Warn("ingestor drain timed out")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		zlog.Error("http shutdown failed", zap.Error(err))
	}
}
