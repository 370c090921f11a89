package controllers

import (
	"net/http"

	"github.com/bellapacxx/inzo-lotto/services"
	"github.com/bellapacxx/inzo-lotto/utils/logger"
	"github.com/gin-gonic/gin"
)

// GetRound returns the public summary of the current round.
func GetRound(lottery *services.Lottery) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := lottery.Summary(c.Request.Context())
		if err != nil {
			logger.Errorf("load round summary: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load round"})
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}
