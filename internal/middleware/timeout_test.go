package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTimeoutEngine(d time.Duration, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), Timeout(TimeoutConfig{Duration: d}))
	engine.GET("/", handler)
	return engine
}

func TestTimeout(t *testing.T) {
	t.Run("fast handler passes through", func(t *testing.T) {
		engine := newTimeoutEngine(time.Second, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "success"})
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("expired deadline returns 504", func(t *testing.T) {
		engine := newTimeoutEngine(20*time.Millisecond, func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusGatewayTimeout, resp.Code)
		assert.NotEmpty(t, resp.TraceID)
	})

	t.Run("handler observes the deadline", func(t *testing.T) {
		var deadlineSet bool
		engine := newTimeoutEngine(time.Second, func(c *gin.Context) {
			_, deadlineSet = c.Request.Context().Deadline()
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, deadlineSet)
	})
}
