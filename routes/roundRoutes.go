package routes

import (
	"github.com/gin-gonic/gin"

	"crash-game/controllers"
)

func RoundRoutes(r *gin.Engine, rc *controllers.RoundController) {
	r.GET("/", rc.Info)
	r.GET("/status", rc.Status)

	api := r.Group("/api")
	{
		api.GET("/state", rc.GetState)
		api.GET("/history", rc.GetHistory)
		api.GET("/rounds", rc.GetRounds)
	}
}
