package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lig4/engine/internal/eval"
	"lig4/engine/internal/game"
	"lig4/engine/internal/match"
	"lig4/engine/internal/search"
)

var (
	errDepthLimit = errors.New("depth above server limit")
	errBoardLimit = errors.New("board above server limit")
)

type searchRequest struct {
	Board     [][]int `json:"board" binding:"required"`
	WinLength int     `json:"winLength"`
	Depth     int     `json:"depth" binding:"required"`
	Algorithm string  `json:"algorithm"`
	Pruning   bool    `json:"pruning"`
	Side      int     `json:"side" binding:"required"`
}

type searchResponse struct {
	search.Result
	search.Stats
	Engine string `json:"engine"`
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	board, err := decodeBoard(req.Board, s.cfg.MaxBoardSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side := game.Cell(req.Side)
	if !side.IsPiece() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("side must be %d or %d", game.PlayerPiece, game.OpponentPiece)})
		return
	}
	if req.Depth > s.cfg.MaxSearchDepth {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%v: %d > %d", errDepthLimit, req.Depth, s.cfg.MaxSearchDepth)})
		return
	}
	if req.WinLength == 0 {
		req.WinLength = s.cfg.DefaultWinLength
	}
	if req.Algorithm == "" {
		req.Algorithm = search.Negamax.String()
	}
	alg, err := search.ParseAlgorithm(req.Algorithm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := search.NewConfig(req.Depth, req.WinLength, alg, req.Pruning)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h := eval.Default()
	if s.cfg.ScaleHeuristic {
		h = eval.ForWinLength(req.WinLength)
	}
	engine, err := search.New(cfg, search.WithHeuristic(h), search.WithLogger(s.logger))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, stats := engine.Search(board, side)
	c.JSON(http.StatusOK, searchResponse{Result: res, Stats: stats, Engine: cfg.Name()})
}

// decodeBoard reads rows bottom first, one int per cell. Neither side may
// exceed maxSize.
func decodeBoard(rows [][]int, maxSize int) (*game.Board, error) {
	if len(rows) > maxSize {
		return nil, fmt.Errorf("%w: %d rows > %d", errBoardLimit, len(rows), maxSize)
	}
	cells := make([][]game.Cell, len(rows))
	for r, row := range rows {
		if len(row) > maxSize {
			return nil, fmt.Errorf("%w: row %d has %d cells > %d", errBoardLimit, r, len(row), maxSize)
		}
		cells[r] = make([]game.Cell, len(row))
		for col, v := range row {
			cell := game.Cell(v)
			if cell < game.Empty || cell > game.Obstacle {
				return nil, fmt.Errorf("cell (%d,%d): unknown value %d", r, col, v)
			}
			cells[r][col] = cell
		}
	}
	return game.FromRows(cells)
}

type matchRequest struct {
	Difficulty string            `json:"difficulty"`
	WinLength  int               `json:"winLength"`
	Player     *match.EngineSpec `json:"player"`
	Opponent   *match.EngineSpec `json:"opponent"`
	Seed       int64             `json:"seed"`
}

func (s *Server) handleStartMatch(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	difficulty, err := match.ParseDifficulty(req.Difficulty)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WinLength == 0 {
		req.WinLength = s.cfg.DefaultWinLength
	}
	setup := match.NewSetup(match.ModeAIvsAI, difficulty, req.WinLength, "")
	setup.Seed = req.Seed
	if req.Player != nil {
		setup.Player = match.Participant{Name: req.Player.Name, Engine: req.Player}
	}
	if req.Opponent != nil {
		setup.Opponent = match.Participant{Name: req.Opponent.Name, Engine: req.Opponent}
	}
	for _, p := range []match.Participant{setup.Player, setup.Opponent} {
		if p.Engine.Depth > s.cfg.MaxSearchDepth {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%v: %d > %d", errDepthLimit, p.Engine.Depth, s.cfg.MaxSearchDepth)})
			return
		}
	}

	v, err := s.manager.StartMatch(setup)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if v.Status == match.StatusActive && !s.play(v.ID) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is shutting down"})
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (s *Server) handleGetMatch(c *gin.Context) {
	v, ok := s.manager.GetMatch(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": match.ErrMatchNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) handleStandings(c *gin.Context) {
	c.JSON(http.StatusOK, s.table.Rows())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, match.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, match.ErrMatchFinished), errors.Is(err, match.ErrNotYourTurn):
		return http.StatusConflict
	case errors.Is(err, match.ErrInvalidSetup), errors.Is(err, match.ErrInvalidPiece), errors.Is(err, game.ErrIllegalMove):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
