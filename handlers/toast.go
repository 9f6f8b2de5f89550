package handlers

import (
	"net/http"

	"farmstore-backend/middleware"

	"github.com/gin-gonic/gin"
)

type ToastHandler struct{}

func (h *ToastHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentSession(c).Toasts.Active())
}

func (h *ToastHandler) Dismiss(c *gin.Context) {
	if !middleware.CurrentSession(c).Toasts.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Toast not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Toast dismissed"})
}
