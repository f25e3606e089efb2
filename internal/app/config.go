package app

import (
	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/envutil"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Mode        string
	Environment string
	Version     string
	SeedOnStart bool
	KAG         kag.Options
}

func LoadConfig(log *logger.Logger) Config {
	defaults := kag.DefaultOptions()
	cfg := Config{
		Port:        envutil.Str("PORT", "8000"),
		Mode:        envutil.Str("LOG_MODE", "development"),
		Environment: envutil.Str("ENVIRONMENT", "development"),
		Version:     envutil.Str("SERVICE_VERSION", "dev"),
		SeedOnStart: envutil.Bool("SEED_ON_START", false),
		KAG: kag.Options{
			MaxDependencyDepth:       envutil.Int("KAG_MAX_DEPENDENCY_DEPTH", defaults.MaxDependencyDepth),
			MasteryThreshold:         envutil.Float("KAG_MASTERY_THRESHOLD", defaults.MasteryThreshold),
			GapSignificanceThreshold: envutil.Float("KAG_GAP_SIGNIFICANCE_THRESHOLD", defaults.GapSignificanceThreshold),
			FuzzyAcceptScore:         envutil.Float("KAG_FUZZY_ACCEPT_SCORE", defaults.FuzzyAcceptScore),
		},
	}
	log.Info("configuration loaded",
		"port", cfg.Port,
		"mode", cfg.Mode,
		"mastery_threshold", cfg.KAG.MasteryThreshold,
		"max_dependency_depth", cfg.KAG.MaxDependencyDepth)
	return cfg
}
