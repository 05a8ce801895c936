package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crash-game/models"
	"crash-game/websocket"
)

// WebSocketHandler upgrades the request and attaches the connection to the hub
// and the round engine.
func WebSocketHandler(hub *models.Hub, eng websocket.Engine, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		websocket.ServeWs(hub, eng, log, c.Writer, c.Request)
	}
}
