package defaults

import "time"

// Handler timeouts.
const (
	// HandlerTimeout bounds store access for a single API request.
	HandlerTimeout = 10 * time.Second
)

// Server timeouts.
const (
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Kubernetes timeouts.
const (
	// KubernetesAPITimeout bounds a single ConfigMap API call.
	KubernetesAPITimeout = 30 * time.Second
)
