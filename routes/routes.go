package routes

import (
	"github.com/bellapacxx/inzo-lotto/controllers"
	"github.com/bellapacxx/inzo-lotto/services"
	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP surface reads from.
type Deps struct {
	Lottery        *services.Lottery
	Hub            *services.Hub
	AllowedOrigins []string
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	// ----------------------
	// Keep-alive
	// ----------------------
	r.GET("/", controllers.Alive)
	r.HEAD("/", controllers.Alive)
	r.GET("/health", controllers.Health)

	// ----------------------
	// Round routes
	// ----------------------
	api := r.Group("/api")
	api.GET("/round", controllers.GetRound(deps.Lottery)) // Current round summary

	// ----------------------
	// Results feed
	// ----------------------
	r.GET("/ws/results", controllers.ResultsWebSocket(deps.Hub, deps.AllowedOrigins))
}
