package version

import (
	"strings"

	"github.com/merchantiq/pricewise-backend/pkg/config"
)

// Default is the platform version stamped onto generated reports when no
// override is configured.
const Default = "2.4.1"

// Resolve returns the configured platform version or the default.
func Resolve(cfg config.VersionConfig) string {
	if v := strings.TrimSpace(cfg.Platform); v != "" {
		return v
	}
	return Default
}
