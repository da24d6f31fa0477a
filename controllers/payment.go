// controllers/payment.go
package controllers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"scholar-review-api/config"
	"scholar-review-api/models"
	"scholar-review-api/services"
	"scholar-review-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type initializePaymentRequest struct {
	PaymentType   string  `json:"payment_type" binding:"required"`
	PublicationID *string `json:"publication_id"`
}

// InitializePayment creates a pending payment with the fixed fee for its
// type. Amounts are never taken from the client. A review fee can only be
// initialized against a rejected publication whose author has no free-review
// credit left.
func InitializePayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req initializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, known := models.FeeAmountForType(req.PaymentType)
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment type"})
		return
	}

	if req.PaymentType == models.PaymentTypeReviewFee {
		if req.PublicationID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "publication_id is required for a review fee"})
			return
		}
		var pub models.Publication
		if err := config.DB.First(&pub, "publication_id = ?", *req.PublicationID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
			return
		}
		if pub.AuthorID != user.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if pub.RejectionCount < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "review fee applies to rejected publications only"})
			return
		}
		var sub models.Subscription
		if err := config.DB.First(&sub, "user_id = ?", user.UserID).Error; err == nil {
			if sub.HasFreeReviewAvailable() {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":             "a free review credit is available; no payment is needed",
					"free_reviews_left": models.FreeReviewLimit - sub.FreeReviewsUsed,
				})
				return
			}
		}
	}

	payment := models.Payment{
		UserID:        user.UserID,
		Reference:     utils.GeneratePaymentReference(),
		PaymentType:   req.PaymentType,
		Amount:        amount,
		Status:        models.PaymentStatusPending,
		PublicationID: req.PublicationID,
	}
	if err := config.DB.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize payment"})
		return
	}
	log.Printf("[InitializePayment] payment %s (%s) created for user %d", payment.Reference, payment.PaymentType, user.UserID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"payment": payment,
	})
}

// VerifyPayment reports the current status of a payment by reference. It is a
// read-only status check; it never marks a payment used.
func VerifyPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	reference := c.Param("reference")

	var payment models.Payment
	if err := config.DB.First(&payment, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment"})
		return
	}
	if payment.UserID != user.UserID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reference": payment.Reference,
		"status":    payment.Status,
		"used":      payment.Used,
		"amount":    payment.Amount,
	})
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string  `json:"reference"`
		Status    string  `json:"status"`
		Amount    float64 `json:"amount"`
	} `json:"data"`
}

// PaymentWebhook receives gateway callbacks. The body must carry a valid
// HMAC-SHA512 signature over the raw payload. A successful charge marks the
// payment success and notifies the payer; it never consumes the payment.
func PaymentWebhook(c *gin.Context) {
	secret := os.Getenv("PAYMENT_WEBHOOK_SECRET")
	if secret == "" {
		log.Printf("[PaymentWebhook] PAYMENT_WEBHOOK_SECRET not configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook not configured"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	signature := c.GetHeader("X-Payment-Signature")
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		log.Printf("[PaymentWebhook] signature mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var payment models.Payment
	if err := config.DB.First(&payment, "reference = ?", event.Data.Reference).Error; err != nil {
		// Acknowledge unknown references so the gateway stops retrying.
		log.Printf("[PaymentWebhook] unknown reference %q", event.Data.Reference)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	target := ""
	switch event.Event {
	case "charge.success":
		// A charge for the wrong amount never marks the payment paid.
		if event.Data.Amount != payment.Amount {
			log.Printf("[PaymentWebhook] amount mismatch for %s: got %.2f, want %.2f",
				payment.Reference, event.Data.Amount, payment.Amount)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		target = models.PaymentStatusSuccess
	case "charge.failed":
		target = models.PaymentStatusFailed
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	// Only pending payments move; replayed webhooks are no-ops.
	result := config.DB.Model(&models.Payment{}).
		Where("payment_id = ? AND status = ?", payment.PaymentID, models.PaymentStatusPending).
		Update("status", target)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
		return
	}

	if result.RowsAffected == 1 && target == models.PaymentStatusSuccess {
		log.Printf("[PaymentWebhook] payment %s marked success", payment.Reference)
		services.NewNotifier(config.DB).Dispatch([]services.NotificationInput{{
			UserID:        payment.UserID,
			Title:         "Payment Received",
			Message:       "Your payment " + payment.Reference + " was received. You can now submit your publication for review.",
			Type:          models.NotificationTypeSuccess,
			PublicationID: payment.PublicationID,
		}})
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetPayment returns the full payment record by reference.
func GetPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	reference := c.Param("reference")

	var payment models.Payment
	if err := config.DB.First(&payment, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment"})
		return
	}
	if payment.UserID != user.UserID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// RequestRefund flags a successful, unused payment for refund and notifies
// the editorial team. Consumed payments are not refundable.
func RequestRefund(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	reference := c.Param("reference")

	result := config.DB.Model(&models.Payment{}).
		Where("reference = ? AND user_id = ? AND status = ? AND used = ?",
			reference, user.UserID, models.PaymentStatusSuccess, false).
		Update("status", models.PaymentStatusRefundRequested)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request refund"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment is not refundable"})
		return
	}

	var editors []models.User
	if err := config.DB.Where("role_id IN ? AND delete_at IS NULL",
		[]int{models.RoleEditor, models.RoleAdmin}).Find(&editors).Error; err == nil {
		inputs := make([]services.NotificationInput, 0, len(editors))
		for _, ed := range editors {
			inputs = append(inputs, services.NotificationInput{
				UserID:  ed.UserID,
				Title:   "Refund Requested",
				Message: user.DisplayName() + " requested a refund for payment " + reference + ".",
				Type:    models.NotificationTypeWarning,
			})
		}
		services.NewNotifier(config.DB).Dispatch(inputs)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Refund requested"})
}

// GetPaymentHistory lists the caller's payments, newest first. Admins may
// pass user_id to inspect another account.
func GetPaymentHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	targetID := user.UserID
	if raw := c.Query("user_id"); raw != "" && user.IsAdmin() {
		var other models.User
		if err := config.DB.First(&other, "user_id = ?", raw).Error; err == nil {
			targetID = other.UserID
		}
	}

	var payments []models.Payment
	if err := config.DB.Where("user_id = ?", targetID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"total":    len(payments),
	})
}

// GetSubscriptionStatus reports the caller's free-review credit state.
func GetSubscriptionStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var sub models.Subscription
	err := config.DB.First(&sub, "user_id = ?", user.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"free_reviews_granted": false,
				"free_reviews_used":    0,
				"free_reviews_left":    0,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	left := 0
	if sub.FreeReviewsGranted {
		left = models.FreeReviewLimit - sub.FreeReviewsUsed
		if left < 0 {
			left = 0
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"free_reviews_granted": sub.FreeReviewsGranted,
		"free_reviews_used":    sub.FreeReviewsUsed,
		"free_reviews_left":    left,
	})
}
