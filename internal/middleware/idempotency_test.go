package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newIdempotentRouter(handled *int32) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IdempotencyMiddleware(nil, time.Hour))
	router.POST("/trips", func(c *gin.Context) {
		atomic.AddInt32(handled, 1)
		c.JSON(http.StatusCreated, gin.H{"id": "trip-1"})
	})
	return router
}

func TestIdempotency_DisabledWithoutRedis(t *testing.T) {
	t.Parallel()

	var handled int32
	router := newIdempotentRouter(&handled)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: status %d, want %d", i, rec.Code, http.StatusCreated)
		}
	}

	// Without a store every request reaches the handler.
	if got := atomic.LoadInt32(&handled); got != 2 {
		t.Errorf("handler ran %d times, want 2", got)
	}
}

func TestIdempotency_OnlyMutatingMethodsQualify(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		http.MethodPost:   true,
		http.MethodPut:    true,
		http.MethodPatch:  true,
		http.MethodDelete: true,
		http.MethodGet:    false,
		http.MethodHead:   false,
	}
	for method, want := range cases {
		if got := mutating(method); got != want {
			t.Errorf("mutating(%s) = %v, want %v", method, got, want)
		}
	}
}
