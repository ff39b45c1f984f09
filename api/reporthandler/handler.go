package reporthandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidvatten/tidvatten/api"
	"github.com/tidvatten/tidvatten/auth"
	"github.com/tidvatten/tidvatten/common"
	"github.com/tidvatten/tidvatten/interfaces"
	"github.com/tidvatten/tidvatten/metrics"
)

// MaxReportSize caps the request body of a report.
const MaxReportSize = 1 << 20

// Handler processes keeper reports.
type Handler struct {
	gate    *auth.Gate
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a report handler authenticating requests with gate.
// A nil m records metrics into a private registry.
func NewHandler(gate *auth.Gate, log *slog.Logger, m *metrics.Metrics) *Handler {
	if m == nil {
		m = metrics.NewMetrics(common.PackageName, prometheus.NewRegistry())
	}
	return &Handler{
		gate:    gate,
		log:     log,
		metrics: m,
	}
}

// RegisterRoutes registers POST /report on r. Mount r under api.APIBase.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(requireJSON, h.gate.Middleware).Post("/report", h.HandleReport)
}

// HandleReport decodes a report from an authenticated keeper and
// acknowledges it.
//
// Status codes:
//   - 200 OK: report accepted
//   - 400 Bad Request: missing or malformed token, or body is not JSON
//   - 401 Unauthorized: token did not resolve to a keeper
//   - 413 Request Entity Too Large: body exceeds MaxReportSize
//   - 415 Unsupported Media Type: content type is not application/json
//   - 422 Unprocessable Entity: JSON does not match the report shape
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.log.Error("Report handler reached without an authenticated identity")
		api.WriteError(w, http.StatusUnauthorized)
		return
	}

	releases, err := decodeReport(http.MaxBytesReader(w, r.Body, MaxReportSize))
	if err != nil {
		status := decodeStatus(err)
		h.log.Warn("Failed to decode report", "err", err, "username", identity.Username, "status", status)
		api.WriteError(w, status)
		return
	}

	response := h.Submit(identity, releases)
	if err := api.WriteJSON(w, http.StatusOK, response); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// Submit acknowledges a batch of releases reported by identity. It always
// succeeds; releases are neither validated nor deduplicated.
func (h *Handler) Submit(identity *interfaces.Identity, releases []interfaces.SeededRelease) api.ReportResponse {
	h.log.Info("Received report", "releases", len(releases), "username", identity.Username)
	h.metrics.ReportsTotal.Inc()
	h.metrics.ReportedReleasesTotal.Add(float64(len(releases)))
	return api.NewResponse(api.ReportMessage)
}

var (
	errMissingField = errors.New("missing field")
	errTrailingData = errors.New("trailing data after report")
)

type releaseBody struct {
	ID   *uint32 `json:"id"`
	Hash *string `json:"hash"`
}

type reportBody struct {
	Releases *[]*releaseBody `json:"releases"`
}

// decodeReport reads exactly one report document from r. Every field of
// api.ReportRequest is required; a null value counts as missing.
func decodeReport(r io.Reader) ([]interfaces.SeededRelease, error) {
	dec := json.NewDecoder(r)

	var body reportBody
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, err
	}

	if body.Releases == nil {
		return nil, fmt.Errorf("%w releases", errMissingField)
	}
	releases := make([]interfaces.SeededRelease, 0, len(*body.Releases))
	for i, release := range *body.Releases {
		switch {
		case release == nil:
			return nil, fmt.Errorf("%w releases[%d]", errMissingField, i)
		case release.ID == nil:
			return nil, fmt.Errorf("%w releases[%d].id", errMissingField, i)
		case release.Hash == nil:
			return nil, fmt.Errorf("%w releases[%d].hash", errMissingField, i)
		}
		releases = append(releases, interfaces.SeededRelease{ID: *release.ID, Hash: *release.Hash})
	}
	return releases, nil
}

// decodeStatus maps a decodeReport error to a status: well-formed JSON of
// the wrong shape is 422, anything else unreadable is 400.
func decodeStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &typeErr), errors.Is(err, errMissingField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			api.WriteError(w, http.StatusUnsupportedMediaType)
			return
		}
		next.ServeHTTP(w, r)
	})
}
