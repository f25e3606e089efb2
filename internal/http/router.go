package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/praxis-backend/internal/http/handlers"
	"github.com/yungbote/praxis-backend/internal/http/middleware"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log               *logger.Logger
	HealthHandler     *handlers.HealthHandler
	LearningHandler   *handlers.LearningHandler
	AssessmentHandler *handlers.AssessmentHandler
	LearnerHandler    *handlers.LearnerHandler
	ConceptHandler    *handlers.ConceptHandler
	AnalyticsHandler  *handlers.AnalyticsHandler
	AdminHandler      *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware("praxis-backend"))
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(cfg.Log))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	router.GET("/health/ready", cfg.HealthHandler.Ready)

	api := router.Group("/api")
	{
		// Learning
		api.POST("/learning/ask", cfg.LearningHandler.Ask)

		// Assessments
		api.POST("/assessments", cfg.AssessmentHandler.Create)
		api.POST("/assessments/submit", cfg.AssessmentHandler.Submit)

		// Learners
		api.POST("/learners", cfg.LearnerHandler.Upsert)
		api.GET("/learners/:learner_id", cfg.LearnerHandler.Profile)
		api.GET("/learners/:learner_id/readiness/:concept_id", cfg.LearnerHandler.Readiness)
		api.GET("/learners/:learner_id/next", cfg.LearnerHandler.NextConcepts)
		api.GET("/learners/:learner_id/progress", cfg.LearnerHandler.Progress)
		api.GET("/learners/:learner_id/assessments", cfg.AssessmentHandler.History)
		api.GET("/learners/:learner_id/report", cfg.AssessmentHandler.Report)

		// Concept catalog
		api.GET("/concepts", cfg.ConceptHandler.Search)
		api.GET("/concepts/:concept_id", cfg.ConceptHandler.Get)
		api.GET("/concepts/:concept_id/prerequisites", cfg.ConceptHandler.Prerequisites)
		api.GET("/concepts/:concept_id/dependents", cfg.ConceptHandler.Dependents)
		api.GET("/domains", cfg.ConceptHandler.Domains)

		// Analytics
		api.GET("/analytics/overview", cfg.AnalyticsHandler.Overview)

		// Catalog administration
		admin := api.Group("/admin")
		{
			admin.POST("/concepts", cfg.AdminHandler.UpsertConcept)
			admin.POST("/relations", cfg.AdminHandler.CreateRelation)
			admin.POST("/curriculum/load", cfg.AdminHandler.LoadCurriculum)
			admin.POST("/ingest", cfg.AdminHandler.Ingest)
		}
	}

	return router
}
