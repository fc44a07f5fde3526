package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardfolio/cardfolio/internal/api/handlers"
	"github.com/cardfolio/cardfolio/internal/reports"
	"github.com/cardfolio/cardfolio/internal/repository"
	"github.com/cardfolio/cardfolio/internal/services"
	"github.com/cardfolio/cardfolio/internal/undoredo"
)

// Deps carries everything the HTTP layer needs, injected by main.
type Deps struct {
	Cards     *repository.CardRepository
	Sales     *repository.SaleRepository
	Log       *undoredo.Log
	Dashboard *services.DashboardService
	Snapshots *services.SnapshotService
	Export    *services.ExportService
	Importer  *services.BulkImportService
	Reports   *reports.Generator
	PokeAPI   *services.PokeAPIClient

	CORSAllowedOrigins []string
	BackupDir          string
}

func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(RequestID(), Metrics())

	corsConfig := cors.DefaultConfig()
	if len(deps.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = deps.CORSAllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	cardHandler := handlers.NewCardHandler(deps.Cards, deps.Log)
	saleHandler := handlers.NewSaleHandler(deps.Sales, deps.Log)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard, deps.Snapshots)
	historyHandler := handlers.NewHistoryHandler(deps.Log)
	dataHandler := handlers.NewDataHandler(deps.Export, deps.Importer, deps.Reports, deps.BackupDir)
	pokemonHandler := handlers.NewPokemonHandler(deps.PokeAPI)

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("", cardHandler.ListCards)
			cards.POST("", cardHandler.CreateCard)
			cards.GET("/:id", cardHandler.GetCard)
			cards.PUT("/:id", cardHandler.UpdateCard)
			cards.DELETE("/:id", cardHandler.DeleteCard)
		}

		sales := api.Group("/sales")
		{
			sales.GET("", saleHandler.ListSales)
			sales.POST("", saleHandler.CreateSale)
			sales.GET("/:id", saleHandler.GetSale)
			sales.PUT("/:id", saleHandler.UpdateSale)
			sales.DELETE("/:id", saleHandler.DeleteSale)
		}

		api.GET("/dashboard", dashboardHandler.GetStats)
		api.GET("/dashboard/history", dashboardHandler.GetHistory)

		history := api.Group("/history")
		{
			history.GET("", historyHandler.Status)
			history.POST("/undo", historyHandler.Undo)
			history.POST("/redo", historyHandler.Redo)
			history.DELETE("", historyHandler.Clear)
		}

		api.GET("/export/cards.csv", dataHandler.ExportCardsCSV)
		api.GET("/export/sales.csv", dataHandler.ExportSalesCSV)
		api.GET("/export/report.xlsx", dataHandler.ExportReport)
		api.POST("/import/cards", dataHandler.ImportCards)
		api.POST("/backup", dataHandler.Backup)

		pokemon := api.Group("/pokemon")
		{
			pokemon.GET("", pokemonHandler.ListPokemon)
			pokemon.GET("/:name", pokemonHandler.GetPokemon)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
