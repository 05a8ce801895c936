package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crash-game/controllers"
	"crash-game/models"
	"crash-game/websocket"
)

func WebSocketRoutes(r *gin.Engine, hub *models.Hub, eng websocket.Engine, log *zap.Logger) {
	r.GET("/ws", controllers.WebSocketHandler(hub, eng, log))
}
