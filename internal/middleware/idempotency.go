package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const idempotencyHeader = "Idempotency-Key"

// idempotencyKeyPrefix namespaces replay entries away from the driver
// cache and lock keys sharing the Redis database.
const idempotencyKeyPrefix = "trike:idempotency:"

// storedReply is the serialized form of a completed mutating request.
type storedReply struct {
	Status      int             `json:"status"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// replayStore persists responses keyed by client idempotency key.
type replayStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *replayStore) get(ctx context.Context, key string) (*storedReply, error) {
	data, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var reply storedReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *replayStore) put(ctx context.Context, key string, reply *storedReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		return
	}
	_ = s.client.Set(ctx, idempotencyKeyPrefix+key, data, s.ttl).Err()
}

// bodyCapture tees the response body so it can be replayed later.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key instead of re-running the mutation. Server errors are
// never stored, so a client can retry them with the same key. A nil
// Redis client disables the middleware.
func IdempotencyMiddleware(client *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if client == nil {
		return func(c *gin.Context) { c.Next() }
	}

	store := &replayStore{client: client, ttl: ttl}

	return func(c *gin.Context) {
		if !mutating(c.Request.Method) {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		// A Redis error falls through to normal processing.
		if reply, err := store.get(ctx, key); err == nil && reply != nil {
			c.Data(reply.Status, reply.ContentType, reply.Body)
			c.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}

		store.put(ctx, key, &storedReply{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        capture.buf.Bytes(),
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
