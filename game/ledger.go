package game

import (
	"math"

	"crash-game/models"
)

const defaultUserName = "Anonymous"

// PlayerLedger tracks connected players and their betting state for the
// current round. It is not safe for concurrent use; the Engine owns it.
type PlayerLedger struct {
	players map[string]*models.Player
	order   []string
}

func NewPlayerLedger() *PlayerLedger {
	return &PlayerLedger{players: make(map[string]*models.Player)}
}

// Join adds a player for connection id. Missing identity fields fall back to
// the connection id and a placeholder name. It reports whether the player is new.
func (l *PlayerLedger) Join(id, userID, userName string) bool {
	if _, ok := l.players[id]; ok {
		return false
	}
	if userID == "" {
		userID = id
	}
	if userName == "" {
		userName = defaultUserName
	}
	l.players[id] = &models.Player{
		ID:       id,
		UserID:   userID,
		UserName: userName,
		Status:   models.PlayerWaiting,
	}
	l.order = append(l.order, id)
	return true
}

func (l *PlayerLedger) Get(id string) (models.Player, bool) {
	p, ok := l.players[id]
	if !ok {
		return models.Player{}, false
	}
	return *p, true
}

// PlaceBet records amount for a known player. The amount is taken as-is.
func (l *PlayerLedger) PlaceBet(id string, amount float64) bool {
	p, ok := l.players[id]
	if !ok {
		return false
	}
	p.Bet = amount
	p.Status = models.PlayerBetting
	return true
}

// CashOut settles a betting player at multiplier.
func (l *PlayerLedger) CashOut(id string, multiplier float64) (models.CashOutEvent, bool) {
	p, ok := l.players[id]
	if !ok || p.Status != models.PlayerBetting {
		return models.CashOutEvent{}, false
	}
	p.WinAmount = math.Floor(p.Bet * multiplier)
	p.Status = models.PlayerCashedOut
	return models.CashOutEvent{
		PlayerID:   id,
		Multiplier: multiplier,
		WinAmount:  p.WinAmount,
	}, true
}

// Leave drops the player and any unresolved bet.
func (l *PlayerLedger) Leave(id string) bool {
	if _, ok := l.players[id]; !ok {
		return false
	}
	delete(l.players, id)
	for i, pid := range l.order {
		if pid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// MarkLost moves every player still betting to lost. Players who never bet
// keep their status.
func (l *PlayerLedger) MarkLost() int {
	n := 0
	for _, p := range l.players {
		if p.Status == models.PlayerBetting {
			p.Status = models.PlayerLost
			n++
		}
	}
	return n
}

func (l *PlayerLedger) ResetAll() {
	for _, p := range l.players {
		p.Bet = 0
		p.Status = models.PlayerWaiting
		p.WinAmount = 0
	}
}

// Players returns copies in join order.
func (l *PlayerLedger) Players() []models.Player {
	out := make([]models.Player, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.players[id])
	}
	return out
}

func (l *PlayerLedger) Len() int {
	return len(l.players)
}
