package reporthandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidvatten/tidvatten/api"
	"github.com/tidvatten/tidvatten/interfaces"
)

// SubmitReport posts releases to the report endpoint of the service at url
// and returns the acknowledgement.
//
// Parameters:
//   - url: Base URL of the service (e.g., "https://tidvatten.example.org")
//   - token: the keeper's API token, sent as "Token <token>"
//   - releases: releases the keeper is seeding
func SubmitReport(ctx context.Context, url string, token string, releases []interfaces.SeededRelease) (*api.ReportResponse, error) {
	if releases == nil {
		releases = []interfaces.SeededRelease{}
	}
	body, err := json.Marshal(api.ReportRequest{Releases: releases})
	if err != nil {
		return nil, fmt.Errorf("could not encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimSuffix(url, "/")+api.APIBase+"/report",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not submit report: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read report response: %w", err)
	}

	var reportResp api.ReportResponse
	if err := json.Unmarshal(respBody, &reportResp); err != nil {
		return nil, fmt.Errorf("could not parse report response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("report rejected with status %d: %s", resp.StatusCode, reportResp.Message)
	}

	return &reportResp, nil
}
