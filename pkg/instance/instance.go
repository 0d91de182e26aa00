package instance

import "github.com/angelmondragon/tienda-backend/pkg/env"

// GetID identifies the running process in logs. Platform dyno names win over
// the container hostname.
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	return env.Get("HOSTNAME", "local")
}
