// controllers/roundController.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crash-game/game"
	"crash-game/models"
)

const (
	defaultRoundsLimit = 20
	maxRoundsLimit     = 100
	requestTimeout     = 5 * time.Second
)

// StateReader is the read side of the round engine.
type StateReader interface {
	Snapshot(ctx context.Context) (models.GameState, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
}

// RoundLister returns archived rounds, newest first.
type RoundLister interface {
	Recent(ctx context.Context, limit int64) ([]models.RoundRecord, error)
}

// RoundController handles HTTP requests for the live round and its archive.
type RoundController struct {
	Engine    StateReader
	Rounds    RoundLister
	StartedAt time.Time
	Log       *zap.Logger
}

// NewRoundController returns a new RoundController instance. rounds may be nil
// when no archive is configured.
func NewRoundController(eng StateReader, rounds RoundLister, log *zap.Logger) *RoundController {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoundController{
		Engine:    eng,
		Rounds:    rounds,
		StartedAt: time.Now(),
		Log:       log.Named("http"),
	}
}

// Info describes the service.
func (rc *RoundController) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Crash game server is running",
		"ws":      "/ws",
	})
}

// Status is a liveness probe.
func (rc *RoundController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(rc.StartedAt).Round(time.Second).String(),
	})
}

// GetState returns the current round snapshot.
func (rc *RoundController) GetState(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	state, err := rc.Engine.Snapshot(ctx)
	if err != nil {
		rc.engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetHistory returns the recent crash results, newest first.
func (rc *RoundController) GetHistory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	history, err := rc.Engine.History(ctx)
	if err != nil {
		rc.engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// GetRounds lists archived rounds. The optional limit query parameter is
// capped at maxRoundsLimit.
func (rc *RoundController) GetRounds(c *gin.Context) {
	if rc.Rounds == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Round archive is not configured."})
		return
	}

	limit := int64(defaultRoundsLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer."})
			return
		}
		limit = min(n, maxRoundsLimit)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	rounds, err := rc.Rounds.Recent(ctx, limit)
	if err != nil {
		rc.Log.Error("listing rounds failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rounds."})
		return
	}
	if rounds == nil {
		rounds = []models.RoundRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

func (rc *RoundController) engineError(c *gin.Context, err error) {
	if errors.Is(err, game.ErrEngineStopped) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Game engine is not running."})
		return
	}
	rc.Log.Warn("engine query failed", zap.Error(err))
	c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Game engine did not respond."})
}
