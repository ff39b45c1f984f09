package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tidvatten/tidvatten/interfaces"
)

// APIBase is the prefix all keeper API routes are mounted under.
const APIBase = "/api/v1"

// ReportMessage is the acknowledgement text returned for accepted reports.
const ReportMessage = "Report enqueued"

// ReportRequest is the body of POST /api/v1/report.
type ReportRequest struct {
	// Releases lists every release the keeper is seeding.
	Releases []interfaces.SeededRelease `json:"releases"`
}

// ReportResponse acknowledges a report. Error responses share its shape,
// with Message set to the HTTP reason phrase.
type ReportResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// NewResponse returns a response stamped with the current UTC time.
func NewResponse(message string) ReportResponse {
	return ReportResponse{
		Timestamp: time.Now().UTC(),
		Message:   message,
	}
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes the JSON error body for status, carrying the HTTP
// reason phrase as the message.
func WriteError(w http.ResponseWriter, status int) {
	message := http.StatusText(status)
	if message == "" {
		message = "Unknown error"
	}
	_ = WriteJSON(w, status, NewResponse(message))
}
