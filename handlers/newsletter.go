package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"farmstore-backend/dtos"
	"farmstore-backend/middleware"
	"farmstore-backend/models"
	"farmstore-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type NewsletterHandler struct {
	DB          *gorm.DB
	Mailer      *utils.Mailer
	FrontendURL string
	Log         *zap.Logger
}

func validateNewsletter(req dtos.NewsletterRequest) string {
	switch {
	case req.FullName == "":
		return "Please enter your full name"
	case req.Email == "":
		return "Please enter your email address"
	case !utils.IsValidEmail(req.Email):
		return "Please enter a valid email address"
	case req.FarmSize == "":
		return "Please select your farm size"
	}
	return ""
}

func newUnsubscribeToken() (string, string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return token, string(hash), nil
}

// Subscribe adds the visitor to the newsletter. Subscribing again with the
// same email updates the stored preferences and resubscribes.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	s := middleware.CurrentSession(c)

	var req dtos.NewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if msg := validateNewsletter(req); msg != "" {
		s.Toasts.Error(msg)
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	token, hash, err := newUnsubscribeToken()
	if err != nil {
		h.Log.Error("failed to create unsubscribe token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}

	var sub models.NewsletterSubscriber
	err = h.DB.Where("email = ?", req.Email).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.NewsletterSubscriber{Email: req.Email}
	case err != nil:
		h.Log.Error("failed to look up subscriber", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}

	sub.FullName = req.FullName
	sub.FarmSize = req.FarmSize
	sub.Tips = req.Tips
	sub.Market = req.Market
	sub.Offers = req.Offers
	sub.UnsubscribeTokenHash = hash
	sub.UnsubscribedAt = nil

	if err := h.DB.Save(&sub).Error; err != nil {
		h.Log.Error("failed to save subscriber", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}

	h.Mailer.SendNewsletterConfirmation(sub.Email, sub.FullName, token, h.FrontendURL)

	const success = "Successfully subscribed! Check your email for a confirmation message."
	s.Toasts.Success(success)
	c.JSON(http.StatusCreated, gin.H{"message": success})
}

func (h *NewsletterHandler) Count(c *gin.Context) {
	var count int64
	if err := h.DB.Model(&models.NewsletterSubscriber{}).Where("unsubscribed_at IS NULL").Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count subscribers"})
		return
	}

	resp := dtos.SubscriberCountResponse{Count: count}
	if count > 0 {
		resp.Display = fmt.Sprintf("%d+ Farmers Subscribed", count)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req dtos.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var sub models.NewsletterSubscriber
	if err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&sub).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid unsubscribe link"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(sub.UnsubscribeTokenHash), []byte(req.Token)) != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid unsubscribe link"})
		return
	}

	if sub.Active() {
		now := time.Now()
		if err := h.DB.Model(&sub).Update("unsubscribed_at", &now).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsubscribe"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed"})
}
