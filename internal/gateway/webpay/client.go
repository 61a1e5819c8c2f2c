// Package webpay implements a client for the Transbank Webpay Plus REST
// API (create and commit operations only).
package webpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kineayuda/booking-api/config"
	"github.com/kineayuda/booking-api/pkg/circuitbreaker"
)

const transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

// Integration (sandbox) credentials published by Transbank.
const (
	IntegrationCommerceCode = "597055555532"
	IntegrationAPIKey       = "579B532A7440BB0C9079DED94D31EA1615BACEB56610332264630D42D0A36B1C"
)

type CreateResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type CommitResponse struct {
	BuyOrder          string `json:"buy_order"`
	SessionID         string `json:"session_id"`
	Status            string `json:"status"`
	ResponseCode      int    `json:"response_code"`
	Amount            int64  `json:"amount"`
	AuthorizationCode string `json:"authorization_code"`
	TransactionDate   string `json:"transaction_date"`

	// Raw is the undecoded gateway body, retained for audit.
	Raw []byte `json:"-"`
}

// Approved reports whether the gateway authorized the transaction.
func (r *CommitResponse) Approved() bool {
	return r.ResponseCode == 0 && r.Status == "AUTHORIZED"
}

// Gateway is the payment provider contract consumed by the payment service.
type Gateway interface {
	Create(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (*CreateResponse, error)
	Commit(ctx context.Context, token string) (*CommitResponse, error)
}

type Client struct {
	httpc        *http.Client
	baseURL      string
	commerceCode string
	apiKey       string
	maxAttempts  int
	retryBackoff time.Duration
	breaker      *circuitbreaker.CircuitBreaker
}

func NewClient(cfg config.WebpayConfig) *Client {
	commerceCode := cfg.CommerceCode
	apiKey := cfg.APIKey
	if commerceCode == "" {
		commerceCode = IntegrationCommerceCode
		apiKey = IntegrationAPIKey
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpc:        &http.Client{Timeout: timeout},
		baseURL:      cfg.BaseURL,
		commerceCode: commerceCode,
		apiKey:       apiKey,
		maxAttempts:  maxAttempts,
		retryBackoff: backoff,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "webpay",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
	}
}

func (c *Client) Create(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (*CreateResponse, error) {
	body := map[string]interface{}{
		"buy_order":  buyOrder,
		"session_id": sessionID,
		"amount":     amount,
		"return_url": returnURL,
	}

	var resp CreateResponse
	if _, err := c.do(ctx, http.MethodPost, transactionsPath, body, &resp); err != nil {
		return nil, fmt.Errorf("webpay create failed: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("webpay create returned an empty token")
	}
	return &resp, nil
}

func (c *Client) Commit(ctx context.Context, token string) (*CommitResponse, error) {
	var resp CommitResponse
	raw, err := c.do(ctx, http.MethodPut, transactionsPath+"/"+token, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("webpay commit failed: %w", err)
	}
	resp.Raw = raw
	return &resp, nil
}

// do issues the request with bounded retries behind the circuit breaker.
// 4xx responses are not retried; network errors and 5xx responses are.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var raw []byte
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryBackoff):
			}
		}

		var retryable bool
		err := c.breaker.Execute(func() error {
			var err error
			raw, retryable, err = c.attempt(ctx, method, path, payload)
			return err
		})
		if err == nil {
			if out != nil {
				if err := json.Unmarshal(raw, out); err != nil {
					return nil, fmt.Errorf("failed to decode gateway response: %w", err)
				}
			}
			return raw, nil
		}

		lastErr = err
		if !retryable {
			break
		}
		log.Warn().Err(err).Str("path", path).Int("attempt", attempt).Msg("webpay request failed, retrying")
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte) (raw []byte, retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, raw)
	}
	if resp.StatusCode >= 400 {
		return nil, false, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, raw)
	}
	return raw, false, nil
}
