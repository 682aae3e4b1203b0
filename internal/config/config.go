package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"lig4/engine/internal/game"
)

// Server is the environment of cmd/server.
type Server struct {
	// Port wins over Addr when set, as hosting platforms only export PORT.
	Port string `envconfig:"PORT"`
	Addr string `envconfig:"ADDR" default:":8080"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"match-events"`

	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"30s"`
	MatchRetention time.Duration `envconfig:"MATCH_RETENTION" default:"10m"`

	MaxSearchDepth       int  `envconfig:"MAX_SEARCH_DEPTH" default:"7"`
	MaxBoardSize         int  `envconfig:"MAX_BOARD_SIZE" default:"16"`
	DefaultWinLength     int  `envconfig:"DEFAULT_WIN_LENGTH" default:"4"`
	HeuristicScaleWindow bool `envconfig:"HEURISTIC_SCALE_WINDOW"`

	LogDevelopment bool `envconfig:"LOG_DEVELOPMENT"`
}

// ListenAddr is the address the HTTP server binds.
func (s Server) ListenAddr() string {
	if s.Port != "" {
		return ":" + s.Port
	}
	return s.Addr
}

func (s Server) Validate() error {
	if s.MaxSearchDepth < 1 {
		return fmt.Errorf("MAX_SEARCH_DEPTH must be positive, got %d", s.MaxSearchDepth)
	}
	if s.MaxBoardSize < 1 {
		return fmt.Errorf("MAX_BOARD_SIZE must be positive, got %d", s.MaxBoardSize)
	}
	if err := game.ValidateWinLength(s.DefaultWinLength); err != nil {
		return fmt.Errorf("DEFAULT_WIN_LENGTH: %w", err)
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", s.SweepInterval)
	}
	return nil
}

// Analytics is the environment of cmd/analytics.
type Analytics struct {
	KafkaBroker    string        `envconfig:"KAFKA_BROKER" default:"localhost:9092"`
	KafkaTopic     string        `envconfig:"KAFKA_TOPIC" default:"match-events"`
	KafkaGroupID   string        `envconfig:"KAFKA_GROUP_ID" default:"lig4-analytics"`
	ReportInterval time.Duration `envconfig:"REPORT_INTERVAL" default:"30s"`
	LogDevelopment bool          `envconfig:"LOG_DEVELOPMENT"`
}

// LoadDotEnv reads .env from the working directory or its parent. A missing
// file is not an error; the process environment is used as is.
func LoadDotEnv() bool {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			return false
		}
	}
	return true
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := envconfig.Process("", &cfg); err != nil {
		return Server{}, fmt.Errorf("couldn't process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func LoadAnalytics() (Analytics, error) {
	var cfg Analytics
	if err := envconfig.Process("", &cfg); err != nil {
		return Analytics{}, fmt.Errorf("couldn't process env: %w", err)
	}
	if cfg.ReportInterval <= 0 {
		return Analytics{}, fmt.Errorf("REPORT_INTERVAL must be positive, got %s", cfg.ReportInterval)
	}
	return cfg, nil
}
