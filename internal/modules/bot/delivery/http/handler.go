package handler

import (
	"crypto/subtle"
	"log"
	"net/http"

	botDto "github.com/fitlogapp/fitlog-backend/internal/modules/bot/dto"
	botService "github.com/fitlogapp/fitlog-backend/internal/modules/bot/service"
	"github.com/gin-gonic/gin"
)

type BotHandler struct {
	botService    botService.BotService
	webhookSecret string
}

func NewBotHandler(botService botService.BotService, webhookSecret string) *BotHandler {
	return &BotHandler{
		botService:    botService,
		webhookSecret: webhookSecret,
	}
}

func (h *BotHandler) HandleWebhook(c *gin.Context) {
	secret := c.GetHeader("X-Bot-Secret")
	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var update botDto.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	if err := h.botService.HandleUpdate(c.Request.Context(), update); err != nil {
		// The platform retries on non-2xx; log and acknowledge so a
		// poisoned update can't wedge the webhook queue.
		log.Printf("Failed to handle bot update %d: %v", update.UpdateID, err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
