/*
Package server wires the keeper API into an HTTP server.

# Endpoints

  - POST /api/v1/report - Submit a keeper report (token authenticated)
  - GET /livez - Liveness check
  - GET /readyz - Readiness check, includes the number of known keepers
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready
  - /debug/* - pprof, when enabled

Unknown routes, wrong methods and panics are answered with the same JSON
shape as successful reports, carrying the HTTP reason phrase as the message.

Prometheus metrics are served by a separate listener on MetricsAddr.
*/
package server
