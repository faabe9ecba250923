// Package server provides the HTTP server shared by the pcbshop API.
//
// It owns the listener, graceful shutdown, system routes (/health, /ready,
// /metrics and an index at /) and the middleware applied to API routes:
// request ids, API version negotiation, rate limiting, request body limits,
// request metrics and panic recovery.
//
// API handlers are registered with WithHandler and report failures with
// WriteError or WriteErrorFromErr, which render an ErrorResponse whose HTTP
// status and retryability derive from the pkg/errors code.
package server
