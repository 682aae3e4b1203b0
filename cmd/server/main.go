package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"lig4/engine/internal/analytics"
	"lig4/engine/internal/config"
	"lig4/engine/internal/server"
)

func main() {
	foundEnv := config.LoadDotEnv()
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal("Couldn't load config: ", err)
	}

	zl, err := newLogger(cfg.LogDevelopment)
	if err != nil {
		log.Fatal("Couldn't build logger: ", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()
	if !foundEnv {
		logger.Debug("no .env file found")
	}

	producer := analytics.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger.Named("analytics"))
	defer producer.Close()
	if producer == nil {
		logger.Info("analytics disabled, KAFKA_BROKERS not set")
	}

	srvCfg := server.Config{
		Logger:           logger,
		MaxSearchDepth:   cfg.MaxSearchDepth,
		MaxBoardSize:     cfg.MaxBoardSize,
		DefaultWinLength: cfg.DefaultWinLength,
		ScaleHeuristic:   cfg.HeuristicScaleWindow,
		SweepInterval:    cfg.SweepInterval,
		MatchRetention:   cfg.MatchRetention,
	}
	// a nil *Producer must not become a non-nil interface
	if producer != nil {
		srvCfg.Analytics = producer
	}
	srv := server.New(srvCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx, cfg.ListenAddr()); err != nil {
		logger.Fatalw("server stopped", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
