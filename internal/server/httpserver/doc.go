// Package httpserver serves the admin HTTP endpoint.
//
// The endpoint is off unless server.http.enabled is set, and exposes:
//
//	GET /metrics  Prometheus exposition of the server registry
//	GET /health   JSON liveness with build info and keyspace size
package httpserver
