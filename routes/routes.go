package routes

import (
	"net/http"
	"time"

	"farmstore-backend/catalog"
	"farmstore-backend/handlers"
	"farmstore-backend/middleware"
	"farmstore-backend/session"
	"farmstore-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Catalog  *catalog.Catalog
	Registry *session.Registry
	Issuer   *session.Issuer
	Mailer   *utils.Mailer
	Log      *zap.Logger

	FrontendURL  string
	ShopEmail    string
	SecureCookie bool
}

// SetupRoutes registers the storefront API. The returned function stops the
// background work the routes started.
func SetupRoutes(r *gin.Engine, d Deps) (stop func()) {
	cartHandler := &handlers.CartHandler{Catalog: d.Catalog, Log: d.Log}
	catalogHandler := &handlers.CatalogHandler{Catalog: d.Catalog}
	toastHandler := &handlers.ToastHandler{}
	contactHandler := &handlers.ContactHandler{DB: d.DB, Mailer: d.Mailer, ShopEmail: d.ShopEmail, Log: d.Log}
	newsletterHandler := &handlers.NewsletterHandler{DB: d.DB, Mailer: d.Mailer, FrontendURL: d.FrontendURL, Log: d.Log}

	// forms send email, so they get a tighter budget
	formLimiter := middleware.NewRateLimiter(5, time.Minute)

	api := r.Group("/api")
	api.Use(middleware.Session(d.Registry, d.Issuer, d.SecureCookie))
	{
		// Catalog
		api.GET("/products", catalogHandler.GetProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)
		api.GET("/categories", catalogHandler.GetCategories)

		// Cart
		api.GET("/cart", cartHandler.GetCart)
		api.GET("/cart/view", cartHandler.GetCartView)
		api.POST("/cart/items", cartHandler.AddToCart)
		api.PATCH("/cart/items/:id", cartHandler.ChangeQuantity)
		api.DELETE("/cart/items/:id", cartHandler.RemoveFromCart)
		api.DELETE("/cart", cartHandler.ClearCart)
		api.POST("/cart/checkout", cartHandler.Checkout)

		// Toasts
		api.GET("/toasts", toastHandler.List)
		api.DELETE("/toasts/:id", toastHandler.Dismiss)

		// Forms
		api.GET("/contact/draft", contactHandler.GetDraft)
		api.GET("/newsletter/count", newsletterHandler.Count)

		forms := api.Group("")
		forms.Use(formLimiter.Middleware())
		forms.POST("/contact", contactHandler.Submit)
		forms.POST("/newsletter", newsletterHandler.Subscribe)
		forms.POST("/newsletter/unsubscribe", newsletterHandler.Unsubscribe)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return formLimiter.Stop
}
