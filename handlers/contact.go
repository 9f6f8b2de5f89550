package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"farmstore-backend/dtos"
	"farmstore-backend/middleware"
	"farmstore-backend/models"
	"farmstore-backend/storage"
	"farmstore-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactHandler struct {
	DB        *gorm.DB
	Mailer    *utils.Mailer
	ShopEmail string
	Log       *zap.Logger
}

// GetDraft returns the message pre-filled by checkout, or an empty message.
func (h *ContactHandler) GetDraft(c *gin.Context) {
	s := middleware.CurrentSession(c)

	data, err := s.Draft.Load(c.Request.Context())
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.Log.Warn("failed to load contact draft", zap.String("session_id", s.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, dtos.DraftResponse{Message: string(data)})
}

func validateContact(req dtos.ContactRequest) (int, string) {
	if req.Name == "" {
		return 0, "Please enter your name"
	}
	if req.Phone == "" {
		return 0, "Please enter your phone number"
	}
	if req.Quantity == "" {
		return 0, "Please enter the number of chicks you want"
	}
	qty, err := strconv.Atoi(req.Quantity)
	if err != nil || qty <= 0 {
		return 0, "Please enter a valid number of chicks"
	}
	if len(req.Phone) < 10 {
		return 0, "Please enter a valid phone number"
	}
	return qty, ""
}

// Submit records an order inquiry and forwards it to the shop. The cart is
// left as it is.
func (h *ContactHandler) Submit(c *gin.Context) {
	s := middleware.CurrentSession(c)

	var req dtos.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Quantity = strings.TrimSpace(req.Quantity)
	req.Message = strings.TrimSpace(req.Message)

	qty, msg := validateContact(req)
	if msg != "" {
		s.Toasts.Error(msg)
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	inquiry := models.ContactRequest{
		SessionID: s.ID,
		Name:      req.Name,
		Phone:     req.Phone,
		Quantity:  qty,
		Message:   req.Message,
	}
	if err := h.DB.Create(&inquiry).Error; err != nil {
		h.Log.Error("failed to store contact request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send your order. Please try again."})
		return
	}

	h.Mailer.SendContactNotification(h.ShopEmail, utils.ContactNotification{
		Name:     inquiry.Name,
		Phone:    inquiry.Phone,
		Quantity: inquiry.Quantity,
		Message:  inquiry.Message,
	})

	const success = "Order placed successfully! We will contact you soon."
	s.Toasts.Success(success)
	c.JSON(http.StatusCreated, gin.H{"message": success, "id": inquiry.ID})
}
