package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"crash-game/models"
)

const (
	maxMessageSize   = 4096
	pongWait         = 60 * time.Second
	subscribeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin policy is enforced by the CORS middleware in front of the router
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Engine is the part of the round engine a connection drives.
type Engine interface {
	Join(id, userID, userName string)
	PlaceBet(id string, amount float64)
	CashOut(id string)
	Leave(id string)
	Subscribe(ctx context.Context, attach func(models.GameState)) error
}

// ServeWs upgrades the request, sends the current game state to the new
// client and starts its pumps. The state is taken and the client registered
// in one engine step, so the first frame is gameState and every later frame
// is an event that happened after it. The client's player, if it joins, is
// removed when the connection closes.
func ServeWs(h *models.Hub, eng Engine, log *zap.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	client := models.NewClient(uuid.NewString(), conn)

	registered := false
	ctx, cancel := context.WithTimeout(context.Background(), subscribeTimeout)
	err = eng.Subscribe(ctx, func(state models.GameState) {
		client.Send <- models.WSMessage{Event: models.EventGameState, Data: state}
		registered = h.Add(client)
	})
	cancel()
	if err != nil {
		log.Warn("failed to subscribe client", zap.String("client", client.ID), zap.Error(err))
		conn.Close()
		return
	}
	if !registered {
		log.Info("hub stopped, rejecting client", zap.String("client", client.ID))
		conn.Close()
		return
	}
	log.Info("client connected", zap.String("client", client.ID))

	go client.WritePump()
	go readPump(h, eng, client, log)
}

func readPump(h *models.Hub, eng Engine, c *models.Client, log *zap.Logger) {
	defer func() {
		eng.Leave(c.ID)
		h.Remove(c)
		c.Conn.Close()
		log.Info("client disconnected", zap.String("client", c.ID))
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("websocket read error", zap.String("client", c.ID), zap.Error(err))
			}
			return
		}
		var msg models.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("undecodable frame ignored", zap.String("client", c.ID), zap.Error(err))
			continue
		}
		Dispatch(eng, c.ID, msg, log)
	}
}

// Dispatch turns one client frame into an engine command. Frames with an
// unknown event or a payload that does not decode are dropped.
func Dispatch(eng Engine, clientID string, msg models.InboundMessage, log *zap.Logger) {
	switch msg.Event {
	case models.EventJoin:
		var p models.JoinPayload
		if !decode(msg.Data, &p) {
			log.Debug("bad join payload", zap.String("client", clientID))
			return
		}
		eng.Join(clientID, p.UserID, p.UserName)
	case models.EventPlaceBet:
		var p models.BetPayload
		if !decode(msg.Data, &p) {
			log.Debug("bad placeBet payload", zap.String("client", clientID))
			return
		}
		eng.PlaceBet(clientID, p.Amount)
	case models.EventCashOut:
		eng.CashOut(clientID)
	default:
		log.Debug("unknown event ignored", zap.String("client", clientID), zap.String("event", msg.Event))
	}
}

// decode treats a missing payload as empty.
func decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	return json.Unmarshal(raw, v) == nil
}
