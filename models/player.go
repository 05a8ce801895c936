package models

// PlayerStatus is a player's betting status within the current round.
type PlayerStatus string

const (
	PlayerWaiting   PlayerStatus = "waiting"
	PlayerBetting   PlayerStatus = "betting"
	PlayerCashedOut PlayerStatus = "cashed_out"
	PlayerLost      PlayerStatus = "lost"
)

type Player struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	UserName  string       `json:"userName"`
	Bet       float64      `json:"bet"`
	Status    PlayerStatus `json:"status"`
	WinAmount float64      `json:"winAmount"`
}

// CashOutEvent is the payload of playerCashedOut.
type CashOutEvent struct {
	PlayerID   string  `json:"playerId"`
	Multiplier float64 `json:"multiplier"`
	WinAmount  float64 `json:"winAmount"`
}

// Result strips the connection id, which means nothing once the round is archived.
func (p Player) Result() PlayerResult {
	return PlayerResult{
		UserID:    p.UserID,
		UserName:  p.UserName,
		Bet:       p.Bet,
		Status:    p.Status,
		WinAmount: p.WinAmount,
	}
}
