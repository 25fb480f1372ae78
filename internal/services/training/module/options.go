package module

import (
	"predictkit/internal/core/estimator"
	"predictkit/internal/platform/config"
	dom "predictkit/internal/services/training/domain"
)

// Options holds the CORE_TRAIN_* settings
type Options struct {
	Seed         string // blank means the default seed
	TestFraction float64
	ClassWeight  string
	Estimators   string
	KeepAll      bool

	// estimator tuning, zero means the estimator default
	Trees    int
	MaxDepth int
	MaxIter  int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_TRAIN_")
	return Options{
		Seed:         c.MayString("SEED", ""),
		TestFraction: c.MayFloat64("TEST_FRACTION", dom.DefaultTestFraction),
		ClassWeight: c.MayEnum("CLASS_WEIGHT", string(estimator.ClassWeightNone),
			string(estimator.ClassWeightNone), string(estimator.ClassWeightBalanced)),
		Estimators: c.MayString("ESTIMATORS", ""),
		KeepAll:    c.MayBool("KEEP_ALL", false),
		Trees:      c.MayInt("TREES", 0),
		MaxDepth:   c.MayInt("MAX_DEPTH", 0),
		MaxIter:    c.MayInt("MAX_ITER", 0),
	}
}
