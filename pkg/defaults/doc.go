// Package defaults provides centralized timeout constants.
//
// Timeouts are organized by component:
//
//   - Handler timeouts: for store access while serving an API request
//   - Server timeouts: for HTTP server configuration
//   - Kubernetes timeouts: for ConfigMap API operations
//
// Import and use constants directly:
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.KubernetesAPITimeout)
//	defer cancel()
//
// Callers always respect a shorter deadline already set on the parent context.
package defaults
