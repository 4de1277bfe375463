package http

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sohepalslamat/shopify-front/internal/http/handlers"
	adminhandlers "github.com/sohepalslamat/shopify-front/internal/http/handlers/admin"
	"github.com/sohepalslamat/shopify-front/internal/http/middleware"
	"github.com/sohepalslamat/shopify-front/internal/http/widgettoken"
	"github.com/sohepalslamat/shopify-front/internal/modules/assets"
	"github.com/sohepalslamat/shopify-front/internal/modules/cart"
	"github.com/sohepalslamat/shopify-front/internal/modules/countries"
	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
	"github.com/sohepalslamat/shopify-front/internal/modules/orders"
	"github.com/sohepalslamat/shopify-front/internal/modules/session"
	"github.com/sohepalslamat/shopify-front/internal/storage"
)

const defaultCountriesURL = "https://countriesnow.space/api/v0.1/countries/iso"

func NewRouter(logger *slog.Logger, db *gorm.DB, sessions session.Store, store storage.Storage) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ErrorHandler(logger))

	tokenSecret := os.Getenv("WIDGET_TOKEN_SECRET")
	if tokenSecret == "" {
		log.Fatal("WIDGET_TOKEN_SECRET environment variable is required")
	}
	tokens := widgettoken.New([]byte(tokenSecret))

	msvc := merchants.NewService(db)
	cartClient := cart.NewClient(envDuration("CART_FETCH_TIMEOUT", 10*time.Second))
	loader := countries.NewLoader(envOr("COUNTRIES_URL", defaultCountriesURL), 10*time.Second)
	asvc := assets.NewService(store)
	journal := orders.NewJournal(db)
	pipeline := orders.NewPipeline(envDuration("SUBMIT_TIMEOUT", 15*time.Second), journal)

	// warm the country list so the first modal open does not pay for it
	go loader.List(context.Background())

	widget := handlers.NewWidgetHandler(msvc.Repo(), sessions, tokens, cartClient, pipeline)
	assetsH := handlers.NewAssetsHandler(msvc.Repo(), loader, asvc)
	adminMerchants := adminhandlers.NewMerchantsHandler(msvc, store, asvc)
	adminJournal := adminhandlers.NewJournalHandler(journal)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := r.Group("/widget")
	{
		w.GET("/modal.html", assetsH.ModalHTML)
		w.GET("/countries.json", assetsH.CountriesJSON)

		w.POST("/sessions", widget.Open)
		w.POST("/sessions/:id/submit", widget.Submit)
		w.POST("/sessions/:id/close", widget.Close)
		w.DELETE("/sessions/:id", widget.Close)
	}

	adminKey := os.Getenv("ADMIN_API_KEY")
	admin := r.Group("/admin/api")
	{
		global := admin.Group("", middleware.RequireAdminKey(adminKey))
		global.POST("/merchants", adminMerchants.Register)
		global.GET("/merchants", adminMerchants.List)
		global.DELETE("/merchants/:code", adminMerchants.Delete)
		global.GET("/sessions/:id/journal", adminJournal.BySession)

		// merchants can manage their own deployment with the API key
		// issued at registration
		scoped := admin.Group("", middleware.RequireMerchantKey(msvc, adminKey))
		scoped.PUT("/merchants/:code", adminMerchants.Update)
		scoped.POST("/merchants/:code/modal", adminMerchants.UploadModal)
	}

	return r
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("bad %s=%q, using default %s", k, v, def)
		return def
	}
	return d
}
