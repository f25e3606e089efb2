package app

import (
	redisclient "github.com/yungbote/praxis-backend/internal/clients/redis"
	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
	"github.com/yungbote/praxis-backend/internal/services"
)

type Services struct {
	Learning   *services.LearningService
	Assessment *services.AssessmentService
	Learner    *services.LearnerService
	Analytics  *services.AnalyticsService
	Admin      *services.AdminService
}

func wireServices(log *logger.Logger, cfg Config, store *graph.Store, gen kag.Generator, cache *redisclient.ConceptCache) Services {
	log.Info("Wiring services...")
	return Services{
		Learning:   services.NewLearningService(store, gen, cache, log, cfg.KAG),
		Assessment: services.NewAssessmentService(store, log, cfg.KAG),
		Learner:    services.NewLearnerService(store, log, cfg.KAG),
		Analytics:  services.NewAnalyticsService(store, log),
		Admin:      services.NewAdminService(store, gen, cache, log),
	}
}
