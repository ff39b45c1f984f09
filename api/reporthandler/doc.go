// Package reporthandler implements the endpoint keepers use to report which
// releases they are seeding, and a client for it.
//
// # Endpoint
//
//	POST /api/v1/report
//	Authorization: Token <value>
//	Content-Type: application/json
//
//	{"releases": [{"id": 42, "hash": "0123abcd..."}]}
//
// Requests pass through the auth.Gate before the body is read. Accepted
// reports are acknowledged with
//
//	{"timestamp": "2024-01-02T15:04:05Z", "message": "Report enqueued"}
//
// Reports are logged and counted but not stored.
//
// # Usage Example
//
//	gate := auth.NewGate(auth.NewStubResolver(), logger, m)
//	handler := reporthandler.NewHandler(gate, logger, m)
//
//	router := chi.NewRouter()
//	router.Route(api.APIBase, handler.RegisterRoutes)
//
// Client-side:
//
//	resp, err := reporthandler.SubmitReport(ctx, "https://tidvatten.example.org", token, releases)
package reporthandler
