package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Alive answers the keep-alive pinger on /.
func Alive(c *gin.Context) {
	c.String(http.StatusOK, "InzoLotto bot is alive!")
}

// Health is the JSON health check.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
}
