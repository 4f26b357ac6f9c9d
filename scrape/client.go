// Package scrape talks to the external scraping service that enriches a
// workflow state with service listings and service page content.
//
// Information Hiding:
// - HTTP wire format hidden behind the Scrape method
// - The service owns the enrichment logic; this client only ships state
//   out and back
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adforge/adforge/model"
)

// Client calls the scraping service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a scrape client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type scrapeRequest struct {
	State model.WorkflowState `json:"state"`
}

type scrapeResponse struct {
	LastStep model.WorkflowState `json:"lastStep"`
}

// Scrape posts the full workflow state to the service and returns the
// updated state. The service decides whether to scrape a service list or a
// single service page based on the conversation it receives.
func (c *Client) Scrape(ctx context.Context, state model.WorkflowState) (model.WorkflowState, error) {
	body, err := json.Marshal(scrapeRequest{State: state})
	if err != nil {
		return model.WorkflowState{}, fmt.Errorf("encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return model.WorkflowState{}, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.WorkflowState{}, fmt.Errorf("scrape request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return model.WorkflowState{}, fmt.Errorf("scrape service returned status %d: %s", resp.StatusCode, payload)
	}

	var decoded scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return model.WorkflowState{}, fmt.Errorf("decode scrape response: %w", err)
	}
	return decoded.LastStep, nil
}
