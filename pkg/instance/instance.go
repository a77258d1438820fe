package instance

import (
	"os"

	"github.com/overnite/manifest-backend/pkg/env"
)

// ID names the running process in logs. MANIFEST_INSTANCE_ID and DYNO win
// over the hostname; "local" is the last resort.
func ID() string {
	if id := env.First("MANIFEST_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
