package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"farmstore-backend/cart"
	"farmstore-backend/catalog"
	"farmstore-backend/dtos"
	"farmstore-backend/middleware"
	"farmstore-backend/session"
	"farmstore-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	Catalog *catalog.Catalog
	Log     *zap.Logger
}

func (h *CartHandler) respond(c *gin.Context, s *session.Session) {
	c.JSON(http.StatusOK, dtos.NewCartResponse(s.Cart.Snapshot(), s.Toasts.Active()))
}

func (h *CartHandler) fail(c *gin.Context, s *session.Session, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrPersist):
		h.Log.Error("cart persist failed", zap.String("session_id", s.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
	default:
		h.Log.Error("cart operation failed", zap.String("session_id", s.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	h.respond(c, middleware.CurrentSession(c))
}

// GetCartView returns the rendered cart panel. The badge count and total are
// repeated in headers for pages that only update those.
func (h *CartHandler) GetCartView(c *gin.Context) {
	v := middleware.CurrentSession(c).View.View()

	c.Header("X-Cart-Count", strconv.Itoa(v.Count))
	c.Header("X-Cart-Total", v.Total)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(v.HTML))
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	s := middleware.CurrentSession(c)

	var req dtos.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	name := req.Name
	if name == "" && h.Catalog != nil {
		if p, ok := h.Catalog.Get(req.Product); ok {
			name = p.Name
		}
	}

	if err := s.Cart.Add(c.Request.Context(), req.Product, name, *req.Price); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s)
}

func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	s := middleware.CurrentSession(c)

	var req dtos.ChangeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if err := s.Cart.ChangeQuantity(c.Request.Context(), c.Param("id"), *req.Delta); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	s := middleware.CurrentSession(c)

	if err := s.Cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	s := middleware.CurrentSession(c)

	if err := s.Cart.Clear(c.Request.Context()); err != nil {
		h.fail(c, s, err)
		return
	}
	h.respond(c, s)
}

// Checkout writes the order summary into the visitor's contact draft. The
// cart is kept until the visitor empties it.
func (h *CartHandler) Checkout(c *gin.Context) {
	s := middleware.CurrentSession(c)

	draft := cart.HandoffFunc(func(ctx context.Context, message string) error {
		return s.Draft.Save(ctx, []byte(message))
	})

	message, err := s.Cart.Checkout(c.Request.Context(), draft)
	if errors.Is(err, cart.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty!", "toasts": s.Toasts.Active()})
		return
	}
	if err != nil {
		h.Log.Error("checkout hand-off failed", zap.String("session_id", s.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare order"})
		return
	}

	c.JSON(http.StatusOK, dtos.CheckoutResponse{Message: message, Toasts: s.Toasts.Active()})
}
