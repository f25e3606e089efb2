package app

import (
	"github.com/gin-gonic/gin"

	httpapi "github.com/yungbote/praxis-backend/internal/http"
	httpH "github.com/yungbote/praxis-backend/internal/http/handlers"
	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Learning   *httpH.LearningHandler
	Assessment *httpH.AssessmentHandler
	Learner    *httpH.LearnerHandler
	Concept    *httpH.ConceptHandler
	Analytics  *httpH.AnalyticsHandler
	Admin      *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, store *graph.Store, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(store),
		Learning:   httpH.NewLearningHandler(log, services.Learning),
		Assessment: httpH.NewAssessmentHandler(services.Assessment),
		Learner:    httpH.NewLearnerHandler(services.Learner),
		Concept:    httpH.NewConceptHandler(store),
		Analytics:  httpH.NewAnalyticsHandler(services.Analytics),
		Admin:      httpH.NewAdminHandler(services.Admin),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers) *gin.Engine {
	return httpapi.NewRouter(httpapi.RouterConfig{
		Log:               log,
		HealthHandler:     handlers.Health,
		LearningHandler:   handlers.Learning,
		AssessmentHandler: handlers.Assessment,
		LearnerHandler:    handlers.Learner,
		ConceptHandler:    handlers.Concept,
		AnalyticsHandler:  handlers.Analytics,
		AdminHandler:      handlers.Admin,
	})
}
