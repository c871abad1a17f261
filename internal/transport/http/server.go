package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"studymate/internal/bootstrap"
	"studymate/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfig(app.Config.CORS.AllowOrigins)))
	router.MaxMultipartMemory = app.Config.Upload.MaxBytes

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/", healthHandler.Root)
	router.GET("/healthz", healthHandler.Check)

	documentHandler := handler.NewDocumentHandler(app.Documents, app.Config.Upload.MaxBytes)
	studyHandler := handler.NewStudyHandler(app.Summaries, app.Chat, app.Quizzes, app.Documents, app.Config.RAG.QuizSoftErrors)
	dashboardHandler := handler.NewDashboardHandler(app.Dashboard)

	api := router.Group("/api")

	documents := api.Group("/documents")
	documents.POST("/upload", documentHandler.Upload)
	documents.GET("", documentHandler.List)
	documents.GET("/stream/:id", documentHandler.Stream)
	documents.GET("/:id", documentHandler.Get)
	documents.DELETE("/:id", documentHandler.Delete)
	documents.POST("/:id/reindex", documentHandler.Reindex)

	api.POST("/summarize/:id", studyHandler.Summarize)
	api.POST("/chat/:id", studyHandler.Chat)
	api.POST("/quiz/:id", studyHandler.Quiz)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/stats", dashboardHandler.Stats)
	dashboard.GET("/activity", dashboardHandler.Activity)

	return router
}

// corsConfig allows credentials for the listed origins, or any origin without credentials when
// the list is empty.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
