package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lig4/engine/internal/analytics"
	"lig4/engine/internal/match"
)

// Publisher receives match events. *analytics.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, key, event string, payload any)
}

type Config struct {
	Logger    *zap.SugaredLogger
	Analytics Publisher

	MaxSearchDepth   int
	// MaxBoardSize caps rows and columns of boards sent to /v1/search.
	MaxBoardSize     int
	DefaultWinLength int
	ScaleHeuristic   bool

	SweepInterval  time.Duration
	MatchRetention time.Duration
}

type Server struct {
	router    *gin.Engine
	manager   *match.Manager
	table     *match.Table
	analytics Publisher
	logger    *zap.SugaredLogger
	cfg       Config

	// ctx bounds matches played in the background. gamesMu orders
	// games.Add against Close.
	ctx     context.Context
	cancel  context.CancelFunc
	gamesMu sync.Mutex
	games   sync.WaitGroup

	connMu   sync.RWMutex
	watchers map[string]map[*wsClient]struct{}
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.MaxSearchDepth <= 0 {
		cfg.MaxSearchDepth = 7
	}
	if cfg.MaxBoardSize <= 0 {
		cfg.MaxBoardSize = 16
	}
	if cfg.DefaultWinLength == 0 {
		cfg.DefaultWinLength = 4
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 30 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		router:    router,
		table:     match.NewTable(),
		analytics: cfg.Analytics,
		logger:    cfg.Logger,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		watchers:  make(map[string]map[*wsClient]struct{}),
	}
	s.manager = match.NewManager(match.Config{
		Logger:         cfg.Logger,
		ScaleHeuristic: cfg.ScaleHeuristic,
		OnMove:         s.onMove,
		OnFinish:       s.onFinish,
	})

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	v1 := router.Group("/v1")
	v1.POST("/search", s.handleSearch)
	v1.POST("/matches", s.handleStartMatch)
	v1.GET("/matches/:id", s.handleGetMatch)
	v1.GET("/standings", s.handleStandings)
	router.GET("/ws", s.handleWS)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.sweeper(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Infow("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops background matches and waits for them.
func (s *Server) Close() {
	s.gamesMu.Lock()
	s.cancel()
	s.gamesMu.Unlock()
	s.games.Wait()
}

func (s *Server) sweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.manager.SweepFinished(s.cfg.MatchRetention)
		}
	}
}

// play drives a match in the background until it ends. It reports false
// once the server is closing.
func (s *Server) play(matchID string) bool {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.games.Add(1)
	go func() {
		defer s.games.Done()
		if _, err := s.manager.Play(s.ctx, matchID); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Errorw("background match failed", "match", matchID, zap.Error(err))
		}
	}()
	return true
}

func (s *Server) onMove(v match.View, rec match.MoveRecord) {
	s.broadcast(v.ID, stateMessage("state", v, &rec))
	if s.analytics != nil {
		s.analytics.Publish(context.Background(), v.ID, analytics.EventMovePlayed, analytics.NewMovePayload(v, rec))
	}
}

func (s *Server) onFinish(v match.View) {
	s.table.Record(v)
	s.broadcast(v.ID, stateMessage("finished", v, nil))
	s.closeWatchers(v.ID)
	if s.analytics != nil {
		s.analytics.Publish(context.Background(), v.ID, analytics.EventMatchFinished, analytics.NewFinishPayload(v))
	}
}

func requestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugw("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}
