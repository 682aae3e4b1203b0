package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"lig4/engine/internal/analytics"
	"lig4/engine/internal/config"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadAnalytics()
	if err != nil {
		log.Fatal("Couldn't load config: ", err)
	}
	zl, err := zap.NewProduction()
	if cfg.LogDevelopment {
		zl, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("Couldn't build logger: ", err)
	}
	defer zl.Sync()
	logger := zl.Sugar().Named("analytics")

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   cfg.KafkaTopic,
		GroupID: cfg.KafkaGroupID,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("analytics consumer listening",
		"broker", cfg.KafkaBroker,
		"topic", cfg.KafkaTopic,
		"group", cfg.KafkaGroupID)

	metrics := analytics.NewMetrics()
	go func() {
		ticker := time.NewTicker(cfg.ReportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.Log(logger)
			}
		}
	}()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				metrics.Log(logger)
				return
			}
			logger.Fatalw("read error", zap.Error(err))
		}
		e, err := analytics.Decode(msg.Value)
		if err != nil {
			logger.Warnw("failed to unmarshal event", "offset", msg.Offset, zap.Error(err))
			continue
		}
		if err := metrics.Record(e); err != nil {
			logger.Warnw("failed to record event", "event", e.Event, zap.Error(err))
			continue
		}
		logger.Debugw("event", "event", e.Event, "match", string(msg.Key))
	}
}
