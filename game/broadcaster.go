package game

import (
	"context"

	"crash-game/models"
)

// Broadcaster receives every observable change of the round. Implementations
// must not block; delivery is best effort.
type Broadcaster interface {
	PlayersUpdated(players []models.Player)
	CountdownStarted(countdown int)
	CountdownUpdated(countdown int)
	GameStarted()
	MultiplierUpdated(multiplier float64)
	PlayerCashedOut(ev models.CashOutEvent)
	GameCrashed(multiplier float64, players []models.Player)
	GameReset(players []models.Player)
}

// Archive stores finished rounds. The engine calls it off its own goroutine.
type Archive interface {
	Record(ctx context.Context, rec models.RoundRecord) error
}

type nopBroadcaster struct{}

func (nopBroadcaster) PlayersUpdated([]models.Player)       {}
func (nopBroadcaster) CountdownStarted(int)                 {}
func (nopBroadcaster) CountdownUpdated(int)                 {}
func (nopBroadcaster) GameStarted()                         {}
func (nopBroadcaster) MultiplierUpdated(float64)            {}
func (nopBroadcaster) PlayerCashedOut(models.CashOutEvent)  {}
func (nopBroadcaster) GameCrashed(float64, []models.Player) {}
func (nopBroadcaster) GameReset([]models.Player)            {}
