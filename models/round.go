package models

import "time"

// RoundStatus is the phase the shared round is in.
type RoundStatus string

const (
	RoundWaiting  RoundStatus = "waiting"
	RoundCounting RoundStatus = "counting"
	RoundRunning  RoundStatus = "running"
	RoundCrashed  RoundStatus = "crashed"
)

// GameState is the view of the round sent to a client when it connects.
type GameState struct {
	State      RoundStatus    `json:"state"`
	Multiplier float64        `json:"multiplier"`
	Countdown  int            `json:"countdown"`
	Players    []Player       `json:"players"`
	History    []HistoryEntry `json:"history"`
}

// HistoryEntry records how a past round ended. Multiplier is preformatted, e.g. "1.35x".
type HistoryEntry struct {
	Multiplier string    `json:"multiplier" bson:"multiplier"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}

// CrashedEvent is the payload of gameCrashed.
type CrashedEvent struct {
	Multiplier float64  `json:"multiplier"`
	Players    []Player `json:"players"`
}

// RoundRecord is the archived outcome of a crashed round.
type RoundRecord struct {
	RoundID    string         `json:"roundId" bson:"roundId"`
	CrashPoint float64        `json:"crashPoint" bson:"crashPoint"`
	Multiplier float64        `json:"multiplier" bson:"multiplier"`
	StartedAt  time.Time      `json:"startedAt" bson:"startedAt"`
	CrashedAt  time.Time      `json:"crashedAt" bson:"crashedAt"`
	Players    []PlayerResult `json:"players" bson:"players"`
}

// PlayerResult is one player's outcome inside a RoundRecord.
type PlayerResult struct {
	UserID    string       `json:"userId" bson:"userId"`
	UserName  string       `json:"userName" bson:"userName"`
	Bet       float64      `json:"bet" bson:"bet"`
	Status    PlayerStatus `json:"status" bson:"status"`
	WinAmount float64      `json:"winAmount" bson:"winAmount"`
}
