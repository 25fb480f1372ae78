package module

import "predictkit/internal/platform/config"

// Backends accepted by CORE_ARTIFACTS_BACKEND
const (
	BackendFS = "fs"
	BackendPG = "pg"
)

// Options selects and configures the artifact backend
type Options struct {
	Backend string
	Dir     string
}

// FromConfig reads CORE_ARTIFACTS_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_ARTIFACTS_")
	return Options{
		Backend: c.MayEnum("BACKEND", BackendFS, BackendFS, BackendPG),
		Dir:     c.MayString("DIR", "./artifacts"),
	}
}
