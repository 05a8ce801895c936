package models

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Outbound event names.
const (
	EventGameState        = "gameState"
	EventPlayersUpdate    = "playersUpdate"
	EventCountdownStarted = "countdownStarted"
	EventCountdownUpdate  = "countdownUpdate"
	EventGameStarted      = "gameStarted"
	EventMultiplierUpdate = "multiplierUpdate"
	EventPlayerCashedOut  = "playerCashedOut"
	EventGameCrashed      = "gameCrashed"
	EventGameReset        = "gameReset"
)

// Inbound event names.
const (
	EventJoin     = "join"
	EventPlaceBet = "placeBet"
	EventCashOut  = "cashOut"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 25 * time.Second
	clientSendSize = 256
)

type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// InboundMessage is a client frame; Data is decoded once the event is known.
type InboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type BetPayload struct {
	Amount float64 `json:"amount"`
}

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan WSMessage
}

// NewClient wraps an upgraded connection with a buffered send queue.
func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{ID: id, Conn: conn, Send: make(chan WSMessage, clientSendSize)}
}

// Hub fans events out to every registered client. Registrations travel on
// the same queue as events, so a client receives exactly the events emitted
// after its Add. Emitting never blocks the caller: a message that does not
// fit a buffer is dropped.
type Hub struct {
	Clients map[*Client]bool
	Mutex   sync.Mutex

	queue   chan hubEntry
	log     *zap.Logger
	quit    chan struct{}
	stopMu  sync.Mutex
	stopped bool
}

// hubEntry is a message to fan out, or a client to register (join) or
// unregister (leave).
type hubEntry struct {
	msg   WSMessage
	join  *Client
	leave *Client
}

// NewHub initializes and returns a new Hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Clients: make(map[*Client]bool),
		queue:   make(chan hubEntry, 256),
		log:     log.Named("hub"),
		quit:    make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.shutdown()
			return
		case entry := <-h.queue:
			switch {
			case entry.join != nil:
				h.Mutex.Lock()
				h.Clients[entry.join] = true
				h.Mutex.Unlock()
				h.log.Info("client registered", zap.String("client", entry.join.ID))
			case entry.leave != nil:
				h.Mutex.Lock()
				if _, ok := h.Clients[entry.leave]; ok {
					delete(h.Clients, entry.leave)
					close(entry.leave.Send)
					h.log.Info("client unregistered", zap.String("client", entry.leave.ID))
				}
				h.Mutex.Unlock()
			default:
				h.fanOut(entry.msg)
			}
		}
	}
}

func (h *Hub) fanOut(message WSMessage) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()
	for client := range h.Clients {
		select {
		case client.Send <- message:
		default:
			h.log.Warn("client send buffer full, dropping message",
				zap.String("client", client.ID), zap.String("event", message.Event))
		}
	}
}

// shutdown closes every registered client and any client whose registration
// was still queued.
func (h *Hub) shutdown() {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()
	for client := range h.Clients {
		close(client.Send)
		delete(h.Clients, client)
	}
	for {
		select {
		case entry := <-h.queue:
			if entry.join != nil {
				close(entry.join.Send)
			}
		default:
			return
		}
	}
}

// Stop ends Run and closes every client's send queue.
func (h *Hub) Stop() {
	h.stopMu.Lock()
	defer h.stopMu.Unlock()
	if !h.stopped {
		h.stopped = true
		close(h.quit)
	}
}

// Add queues the client's registration behind every event emitted so far. It
// reports false, leaving the client untouched, once the hub has stopped.
func (h *Hub) Add(client *Client) bool {
	return h.enqueue(hubEntry{join: client})
}

// Remove queues the client's unregistration behind its registration. A no-op
// once the hub has stopped, since Stop closes every client.
func (h *Hub) Remove(client *Client) {
	h.enqueue(hubEntry{leave: client})
}

// enqueue blocks until the entry is queued, so membership changes are never
// dropped the way a full-queue broadcast is.
func (h *Hub) enqueue(entry hubEntry) bool {
	h.stopMu.Lock()
	defer h.stopMu.Unlock()
	if h.stopped {
		return false
	}
	h.queue <- entry
	return true
}

func (h *Hub) emit(event string, data interface{}) {
	select {
	case h.queue <- hubEntry{msg: WSMessage{Event: event, Data: data}}:
	default:
		h.log.Warn("broadcast queue full, dropping message", zap.String("event", event))
	}
}

func (h *Hub) PlayersUpdated(players []Player) { h.emit(EventPlayersUpdate, players) }

func (h *Hub) CountdownStarted(countdown int) { h.emit(EventCountdownStarted, countdown) }

func (h *Hub) CountdownUpdated(countdown int) { h.emit(EventCountdownUpdate, countdown) }

func (h *Hub) GameStarted() { h.emit(EventGameStarted, struct{}{}) }

func (h *Hub) MultiplierUpdated(multiplier float64) { h.emit(EventMultiplierUpdate, multiplier) }

func (h *Hub) PlayerCashedOut(ev CashOutEvent) { h.emit(EventPlayerCashedOut, ev) }

func (h *Hub) GameCrashed(multiplier float64, players []Player) {
	h.emit(EventGameCrashed, CrashedEvent{Multiplier: multiplier, Players: players})
}

func (h *Hub) GameReset(players []Player) { h.emit(EventGameReset, players) }

// WritePump sends messages from the Send channel to the WebSocket connection
// and keeps it alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
