package webpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kineayuda/booking-api/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.WebpayConfig{
		BaseURL:      baseURL,
		CommerceCode: "597012345678",
		APIKey:       "secret-key",
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
		Timeout:      time.Second,
	})
}

func TestCreate(t *testing.T) {
	t.Run("sends credentials and decodes the response", func(t *testing.T) {
		var gotBody map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, transactionsPath, r.URL.Path)
			assert.Equal(t, "597012345678", r.Header.Get("Tbk-Api-Key-Id"))
			assert.Equal(t, "secret-key", r.Header.Get("Tbk-Api-Key-Secret"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			json.NewEncoder(w).Encode(map[string]string{
				"token": "tok-123",
				"url":   "https://webpay.example/init",
			})
		}))
		defer srv.Close()

		resp, err := newTestClient(srv.URL).Create(context.Background(), "order-1", "session-1", 19990, "https://api.example/return")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", resp.Token)
		assert.Equal(t, "https://webpay.example/init", resp.URL)

		assert.Equal(t, "order-1", gotBody["buy_order"])
		assert.Equal(t, "session-1", gotBody["session_id"])
		assert.Equal(t, float64(19990), gotBody["amount"])
		assert.Equal(t, "https://api.example/return", gotBody["return_url"])
	})

	t.Run("empty token is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"token": "", "url": "x"})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Create(context.Background(), "order-1", "session-1", 19990, "https://api.example/return")
		assert.Error(t, err)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"token": "tok-retry",
				"url":   "https://webpay.example/init",
			})
		}))
		defer srv.Close()

		resp, err := newTestClient(srv.URL).Create(context.Background(), "order-1", "session-1", 19990, "https://api.example/return")
		require.NoError(t, err)
		assert.Equal(t, "tok-retry", resp.Token)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Create(context.Background(), "order-1", "session-1", 19990, "https://api.example/return")
		assert.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestCommit(t *testing.T) {
	t.Run("puts the token and keeps the raw body", func(t *testing.T) {
		body := `{"buy_order":"order-1","status":"AUTHORIZED","response_code":0,"amount":19990}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, transactionsPath+"/tok-123", r.URL.Path)
			w.Write([]byte(body))
		}))
		defer srv.Close()

		resp, err := newTestClient(srv.URL).Commit(context.Background(), "tok-123")
		require.NoError(t, err)
		assert.Equal(t, "order-1", resp.BuyOrder)
		assert.True(t, resp.Approved())
		assert.Equal(t, []byte(body), resp.Raw)
	})

	t.Run("rejected payment is not approved", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"buy_order":"order-1","status":"FAILED","response_code":-1}`))
		}))
		defer srv.Close()

		resp, err := newTestClient(srv.URL).Commit(context.Background(), "tok-123")
		require.NoError(t, err)
		assert.False(t, resp.Approved())
	})
}
