package reporthandler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidvatten/tidvatten/api"
	"github.com/tidvatten/tidvatten/auth"
	"github.com/tidvatten/tidvatten/interfaces"
	"github.com/tidvatten/tidvatten/metrics"
)

func newTestRouter(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewMetrics("test", prometheus.NewRegistry())

	resolver := auth.NewStaticResolver(map[string]string{"abc123": "alice"})
	handler := NewHandler(auth.NewGate(resolver, logger, m), logger, m)

	mux := chi.NewRouter()
	mux.Route(api.APIBase, handler.RegisterRoutes)
	return mux, m
}

func TestHandleReport(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		auth        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "accepted",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": [{"id": 1, "hash": "aa"}, {"id": 2, "hash": "bb"}]}`,
			wantStatus:  http.StatusOK,
			wantMessage: api.ReportMessage,
		},
		{
			name:        "accepted empty batch",
			contentType: "application/json; charset=utf-8",
			auth:        "Token abc123",
			body:        `{"releases": []}`,
			wantStatus:  http.StatusOK,
			wantMessage: api.ReportMessage,
		},
		{
			name:        "missing token",
			contentType: "application/json",
			body:        `{"releases": []}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Bad Request",
		},
		{
			name:        "malformed token",
			contentType: "application/json",
			auth:        "Bearer abc123",
			body:        `{"releases": []}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Bad Request",
		},
		{
			name:        "unknown token",
			contentType: "application/json",
			auth:        "Token nope",
			body:        `{"releases": []}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "wrong content type",
			contentType: "text/plain",
			auth:        "Token abc123",
			body:        `{"releases": []}`,
			wantStatus:  http.StatusUnsupportedMediaType,
			wantMessage: "Unsupported Media Type",
		},
		{
			name:        "invalid json",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": [`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Bad Request",
		},
		{
			name:        "wrong shape",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": [{"id": "one", "hash": "aa"}]}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Unprocessable Entity",
		},
		{
			name:        "missing releases",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Unprocessable Entity",
		},
		{
			name:        "null releases",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": null}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Unprocessable Entity",
		},
		{
			name:        "missing hash",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": [{"id": 1}]}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Unprocessable Entity",
		},
		{
			name:        "missing id",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": [{"hash": "aa"}]}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Unprocessable Entity",
		},
		{
			name:        "null release",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": [null]}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Unprocessable Entity",
		},
		{
			name:        "trailing garbage",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": []} trailing`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Bad Request",
		},
		{
			name:        "second document",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        `{"releases": []} {"releases": []}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Bad Request",
		},
		{
			name:        "trailing whitespace",
			contentType: "application/json",
			auth:        "Token abc123",
			body:        "{\"releases\": []}\n",
			wantStatus:  http.StatusOK,
			wantMessage: api.ReportMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, api.APIBase+"/report", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp api.ReportResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Minute)
		})
	}
}

func TestHandleReport_TooLarge(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"releases": [` + strings.Repeat(`{"id": 1, "hash": "aa"},`, MaxReportSize/20) + `{"id": 1, "hash": "aa"}]}`
	req := httptest.NewRequest(http.MethodPost, api.APIBase+"/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleReport_CountsReleases(t *testing.T) {
	router, m := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, api.APIBase+"/report",
		strings.NewReader(`{"releases": [{"id": 1, "hash": "aa"}, {"id": 1, "hash": "aa"}, {"id": 3, "hash": "cc"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ReportedReleasesTotal))
}

func TestSubmit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(auth.NewGate(auth.NewStubResolver(), logger, nil), logger, nil)

	resp := handler.Submit(&interfaces.Identity{Username: "alice", Token: "abc"}, nil)
	assert.Equal(t, api.ReportMessage, resp.Message)
	assert.Equal(t, time.UTC, resp.Timestamp.Location())
}

func TestSubmitReport_Client(t *testing.T) {
	router, m := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := SubmitReport(context.Background(), srv.URL, "abc123", []interfaces.SeededRelease{
		{ID: 42, Hash: "0123abcd"},
	})
	require.NoError(t, err)
	assert.Equal(t, api.ReportMessage, resp.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportedReleasesTotal))

	_, err = SubmitReport(context.Background(), srv.URL, "wrong", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}
