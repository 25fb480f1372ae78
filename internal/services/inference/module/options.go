package module

import "predictkit/internal/platform/config"

// Options controls upload limits, preview size and the optional API tokens
type Options struct {
	MaxUploadBytes int64
	PreviewRows    int
	Tokens         []string
}

// FromConfig reads CORE_API_* values
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_API_")
	return Options{
		MaxUploadBytes: int64(c.MayInt("MAX_UPLOAD_BYTES", 32<<20)),
		PreviewRows:    c.MayInt("PREVIEW_ROWS", 10),
		Tokens:         c.MayCSV("TOKENS", nil),
	}
}
