package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"facturas/internal/config"
	"facturas/internal/handler"
	"facturas/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	log zerolog.Logger,
	invoiceH *handler.InvoiceHandler,
	uploadH *handler.UploadHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	if cfg.Auth.Enabled() {
		v1.Use(middleware.BearerAuth(cfg.Auth))
	}

	// Extraction
	v1.POST("/extract-pdf", invoiceH.ExtractPDF)
	v1.POST("/extract-invoice-data", invoiceH.ExtractInvoiceData)
	v1.POST("/invoice", invoiceH.ProcessStored)

	// Uploads
	v1.POST("/upload", uploadH.Upload)
	v1.POST("/presigned-url", uploadH.PresignedURL)

	invoices := v1.Group("/invoices")
	invoices.POST("/submit", uploadH.Submit)
	invoices.POST("/export", invoiceH.Export)

	return r
}
