package api

import (
	"github.com/drios/memedb/internal/api/handler"
	"github.com/drios/memedb/internal/api/middleware"
	"github.com/drios/memedb/internal/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	ingestService *service.IngestService,
	searchService *service.SearchService,
	cors middleware.CORSConfig,
	mode string,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	uploadHandler := handler.NewUploadHandler(ingestService)
	searchHandler := handler.NewSearchHandler(searchService)

	r.GET("/health", healthHandler.Health)
	r.POST("/upload", uploadHandler.Upload)
	r.GET("/search", searchHandler.Search)
	r.GET("/stats", searchHandler.GetStats)

	return r
}
