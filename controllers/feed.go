package controllers

import (
	"net/http"
	"slices"

	"github.com/bellapacxx/inzo-lotto/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ResultsWebSocket upgrades the request and subscribes it to draw results.
// Browsers are only accepted from allowedOrigins; clients without an Origin
// header (bots, curl) are always accepted.
func ResultsWebSocket(hub *services.Hub, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			return
		}
		hub.Register(conn)
	}
}
