package models

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(id string, buf int) *Client {
	return &Client{ID: id, Send: make(chan WSMessage, buf)}
}

func receive(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		if !ok {
			t.Fatalf("client %s send queue closed", c.ID)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return WSMessage{}
	}
}

func TestHubFansOutEvents(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()
	defer h.Stop()

	a, b := newTestClient("a", 8), newTestClient("b", 8)
	h.Add(a)
	h.Add(b)

	players := []Player{{ID: "a", Status: PlayerBetting, Bet: 10}}
	h.GameCrashed(1.35, players)

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Event != EventGameCrashed {
			t.Fatalf("event = %s, want %s", msg.Event, EventGameCrashed)
		}
		ev, ok := msg.Data.(CrashedEvent)
		if !ok || ev.Multiplier != 1.35 || len(ev.Players) != 1 {
			t.Fatalf("payload = %#v", msg.Data)
		}
	}
}

func TestHubEventNames(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()
	defer h.Stop()
	c := newTestClient("c", 16)
	h.Add(c)

	h.PlayersUpdated(nil)
	h.CountdownStarted(5)
	h.CountdownUpdated(4)
	h.GameStarted()
	h.MultiplierUpdated(1.01)
	h.PlayerCashedOut(CashOutEvent{PlayerID: "c", Multiplier: 2, WinAmount: 20})
	h.GameCrashed(2.5, nil)
	h.GameReset(nil)

	want := []string{
		EventPlayersUpdate, EventCountdownStarted, EventCountdownUpdate, EventGameStarted,
		EventMultiplierUpdate, EventPlayerCashedOut, EventGameCrashed, EventGameReset,
	}
	for _, name := range want {
		if got := receive(t, c).Event; got != name {
			t.Fatalf("event = %s, want %s", got, name)
		}
	}
}

func TestHubDropsForFullClient(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()
	defer h.Stop()

	slow, fast := newTestClient("slow", 1), newTestClient("fast", 8)
	h.Add(slow)
	h.Add(fast)

	h.CountdownUpdated(3)
	h.CountdownUpdated(2)
	if got := receive(t, fast).Data; got != 3 {
		t.Fatalf("fast first = %v", got)
	}
	if got := receive(t, fast).Data; got != 2 {
		t.Fatalf("fast second = %v", got)
	}
	if got := receive(t, slow).Data; got != 3 {
		t.Fatalf("slow first = %v", got)
	}
	select {
	case msg := <-slow.Send:
		t.Fatalf("slow client got dropped message %+v", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubRemoveAndStop(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	a, b := newTestClient("a", 1), newTestClient("b", 1)
	h.Add(a)
	h.Add(b)
	h.Remove(a)
	if _, ok := <-a.Send; ok {
		t.Fatal("removed client's queue still open")
	}

	h.Stop()
	select {
	case _, ok := <-b.Send:
		if ok {
			t.Fatal("unexpected message after stop")
		}
	case <-time.After(time.Second):
		t.Fatal("stop did not close remaining clients")
	}
	h.Remove(b)
	if h.Add(newTestClient("late", 1)) {
		t.Fatal("Add after Stop reported registration")
	}
}

func TestHubRegistrationFollowsQueuedEvents(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()
	defer h.Stop()

	c := newTestClient("c", 8)
	h.CountdownStarted(5)
	h.CountdownUpdated(4)
	if !h.Add(c) {
		t.Fatal("Add on a running hub failed")
	}
	h.CountdownUpdated(3)

	msg := receive(t, c)
	if msg.Event != EventCountdownUpdate || msg.Data != 3 {
		t.Fatalf("first message = %+v, want countdownUpdate 3", msg)
	}
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected extra message %+v", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubStopClosesPendingRegistration(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := newTestClient("pending", 1)
	if !h.Add(c) {
		t.Fatal("Add before Run failed")
	}
	h.Stop()
	go h.Run()

	select {
	case _, ok := <-c.Send:
		if ok {
			t.Fatal("unexpected message for pending client")
		}
	case <-time.After(time.Second):
		t.Fatal("pending client's queue was never closed")
	}
}
