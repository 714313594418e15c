package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aresgrid/ares-engine/internal/engine"
)

// SetupRouter builds the observer-facing HTTP surface: the /listen
// websocket plus two read-only endpoints. Observers can watch the
// world but never command an agent.
func SetupRouter(eng *engine.Engine, hub *Hub) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/listen", hub.Subscribe)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/status", func(c *gin.Context) {
		robots, valuables := eng.Population()
		c.JSON(http.StatusOK, gin.H{
			"tick":      eng.Tick(),
			"robots":    robots,
			"valuables": valuables,
		})
	})

	return r
}
