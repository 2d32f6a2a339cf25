package web

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (s *Service) setupMiddleware() {
	s.router.Use(
		gin.LoggerWithWriter(log.Logger, "/api/v1/health"),
		recoveryMiddleware(),
		corsMiddleware(),
	)
}

// corsMiddleware allows any origin; the API is read-mostly and meant for a
// local display layer.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// recoveryMiddleware turns a panic into a 500 response.
func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("panic recovered")
				InternalServerError(c, "internal server error")
			}
		}()
		c.Next()
	}
}
