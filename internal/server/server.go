package server

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-openclaw-cv-sender/internal/telegram"
)

// Dispatcher handles a Telegram update asynchronously, *telegram.Bot implements it
type Dispatcher interface {
	Dispatch(ctx context.Context, update tgbotapi.Update)
}

type SessionCounter interface {
	Len() int
}

// NewRouter serves the health check and the Telegram webhook.
// Webhook calls must carry secret in the secret token header, an empty secret
// rejects every call. Updates are handled under ctx, not the request context,
// since handling continues after Telegram gets its 200.
func NewRouter(ctx context.Context, webhookPath, secret string, bot Dispatcher, sessions SessionCounter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":  "CV Sender bot is running!",
			"status":   "healthy",
			"sessions": sessions.Len(),
		})
	})

	r.POST(webhookPath, requireSecret(secret), func(c *gin.Context) {
		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			log.Printf("⚠️ Invalid webhook payload: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
			return
		}
		bot.Dispatch(ctx, update)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func requireSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(telegram.SecretTokenHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			log.Printf("⚠️ Rejected webhook call from %s: bad secret token", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "unauthorized"})
			return
		}
		c.Next()
	}
}
