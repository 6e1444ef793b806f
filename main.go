package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"invoicepipe/client"
	"invoicepipe/config"
	"invoicepipe/handler"
	"invoicepipe/reconcile"
	"invoicepipe/service"
	"invoicepipe/storage"
)

func main() {
	cfg := config.LoadConfig()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer store.Close()

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()

	llmClient := client.NewLLMClient(cfg.LLMAPIBase, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMAllowStub)
	pdfProcessor := service.NewPDFProcessor()

	engine := reconcile.New(reconcile.Options{
		MaxLabelDistance: cfg.MaxLabelDistance,
	})

	extractionService := service.NewExtractionService(
		pdfProcessor,
		tesseractClient,
		llmClient,
		store,
		engine,
		cfg.MinTextLength,
		cfg.MaxOCRPages,
	)

	invoiceHandler := handler.NewInvoiceHandler(extractionService, cfg.MaxFileSize)

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Invoice Extraction Pipeline",
		})
	})

	api := router.Group("/api/v1")
	{
		invoices := api.Group("/invoices")
		{
			invoices.POST("/extract", invoiceHandler.Extract)
			invoices.GET("/:hash", invoiceHandler.GetByHash)
		}
	}

	log.Printf("Starting Invoice Extraction Pipeline on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
