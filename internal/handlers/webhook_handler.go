package handlers

import (
	"errors"
	"io"
	"net/http"

	"freelancehub/internal/logger"
	"freelancehub/internal/payments"
	"freelancehub/internal/services"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 65536

// WebhookHandler receives gateway callbacks. It sits outside the
// authenticated API group: the signature check is the auth.
type WebhookHandler struct {
	BaseHandler
	milestoneService services.MilestoneService
	webhookSecret    string
}

func NewWebhookHandler(base BaseHandler, milestoneService services.MilestoneService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:      base,
		milestoneService: milestoneService,
		webhookSecret:    webhookSecret,
	}
}

func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/stripe", h.HandleStripe)
}

func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	intentID, err := payments.ParseSucceededIntent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		if errors.Is(err, payments.ErrUnhandledEvent) {
			// acknowledge so the gateway stops retrying event types
			// we do not care about
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		logger.Warn("webhook signature rejected", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if err := h.milestoneService.FinalizeByIntentID(h.GetDB(c), intentID); err != nil {
		// non-2xx makes the gateway retry later
		logger.Error("webhook finalize failed", "intent_id", intentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "finalize failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
