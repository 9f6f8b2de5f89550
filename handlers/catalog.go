package handlers

import (
	"net/http"

	"farmstore-backend/catalog"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Catalog *catalog.Catalog
}

func (h *CatalogHandler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"currency": h.Catalog.Currency,
		"products": h.Catalog.Products(c.Query("category")),
	})
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, ok := h.Catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.Catalog.Categories())
}
