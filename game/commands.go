package game

import "crash-game/models"

type joinCmd struct {
	id       string
	userID   string
	userName string
}

type betCmd struct {
	id     string
	amount float64
}

type cashOutCmd struct {
	id string
}

type leaveCmd struct {
	id string
}

type snapshotCmd struct {
	reply chan<- models.GameState
}

// subscribeCmd runs attach on the engine goroutine with the current state, so
// no broadcast can fall between the snapshot and the subscription.
type subscribeCmd struct {
	attach func(models.GameState)
	done   chan<- struct{}
}

type historyCmd struct {
	reply chan<- []models.HistoryEntry
}

// timerFired is posted by a timer callback; the engine ignores it unless
// token matches the live event of that kind.
type timerFired struct {
	kind  timerKind
	token uint64
}
