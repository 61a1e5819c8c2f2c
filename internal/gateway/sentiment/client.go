// Package sentiment calls the external review sentiment classifier.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kineayuda/booking-api/config"
	"github.com/kineayuda/booking-api/internal/model"
)

// Classifier labels free-text review comments.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.ReviewSentiment, error)
}

// Client posts review text to an inference service exposing the
// POS/NEU/NEG label contract.
type Client struct {
	httpc *http.Client
	url   string
}

func NewClient(cfg config.SentimentConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpc: &http.Client{Timeout: timeout},
		url:   cfg.URL,
	}
}

func (c *Client) Classify(ctx context.Context, text string) (model.ReviewSentiment, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier returned %d", resp.StatusCode)
	}

	var out struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode classifier response: %w", err)
	}

	switch out.Label {
	case "POS":
		return model.ReviewSentimentPositive, nil
	case "NEG":
		return model.ReviewSentimentNegative, nil
	default:
		return model.ReviewSentimentNeutral, nil
	}
}
