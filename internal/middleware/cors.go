package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows browser clients from origins. Idempotency-Key and
// X-Request-ID are exposed so clients can correlate retries.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", IdempotencyHeader, HeaderRequestID},
		ExposeHeaders:    []string{HeaderRequestID, IdempotencyReplayed},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
