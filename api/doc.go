/*
Package api holds the wire types and helpers shared by the keeper API
handlers, servers and clients.

Subpackages:

  - reporthandler: POST /api/v1/report, the endpoint keepers use to report
    what they are seeding, plus a client for it
  - server: the HTTP server wiring routes, authentication, health checks
    and the JSON error catcher

Every response body, including errors, has the shape

	{"timestamp": "2024-01-02T15:04:05Z", "message": "Report enqueued"}

where error responses carry the HTTP reason phrase as the message.
*/
package api
