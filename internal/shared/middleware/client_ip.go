package middleware

import (
	"bookshelf-api/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const clientIPKey = "client_ip"

// ClientIP resolves the caller's address once and stores it on the gin context.
// Register it before Logger and the rate limiter.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := utils.ExtractClientIP(c)
		c.Set(clientIPKey, ip)

		log.Debug().
			Str("ip", ip).
			Bool("is_private", utils.IsPrivateIP(ip)).
			Str("path", c.Request.URL.Path).
			Msg("Client IP extracted")

		c.Next()
	}
}

// GetClientIP returns the address stored by ClientIP, falling back to gin's resolution.
func GetClientIP(c *gin.Context) string {
	if ip := c.GetString(clientIPKey); ip != "" {
		return ip
	}
	return c.ClientIP()
}
