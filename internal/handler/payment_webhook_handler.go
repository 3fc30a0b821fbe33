package handler

import (
	"errors"
	"log"
	"net/http"

	"kosku/internal/domain"
	"kosku/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentWebhookHandler receives the gateway's payment notifications. The
// gateway retries on any non-2xx answer, so validation failures that a retry
// cannot fix (bad payload, bad signature, unknown order) are answered 4xx
// exactly once, while storage failures answer 5xx to provoke a retry.
type PaymentWebhookHandler struct {
	svc *service.PaymentService
}

func NewPaymentWebhookHandler(svc *service.PaymentService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{svc: svc}
}

func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	var n service.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	payment, _, err := h.svc.Reconcile(&n)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown order"})
		default:
			log.Printf("[webhook] reconcile %s: %v", n.OrderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "status": payment.Status})
}
