package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "courts/pkg/errors"
	httputil "courts/pkg/http"
	"courts/pkg/logger"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
)

// IdempotencyStore caches successful responses per key. Acquire marks a key
// as in flight so a concurrent retry is rejected instead of executed twice.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Set(ctx context.Context, key string, response *CachedResponse) error
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
	Stop()
}

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

type InMemoryIdempotencyStore struct {
	mu       sync.RWMutex
	store    map[string]*CachedResponse
	inFlight map[string]struct{}
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:    make(map[string]*CachedResponse),
		inFlight: make(map[string]struct{}),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	s.mu.RLock()
	response, exists := s.store[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if time.Since(response.CreatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.store, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	return response, true, nil
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = time.Now()
	s.store[key] = response
	return nil
}

func (s *InMemoryIdempotencyStore) Acquire(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[key]; busy {
		return false, nil
	}
	s.inFlight[key] = struct{}{}
	return true, nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, key)
	return nil
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(cleanupInterval(s.ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, response := range s.store {
				if time.Since(response.CreatedAt) > s.ttl {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func cleanupInterval(ttl time.Duration) time.Duration {
	return min(max(ttl, time.Minute), time.Hour)
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the cached 2xx response for a repeated key on unsafe
// methods. Store failures are logged and the request runs unprotected.
func Idempotency(store IdempotencyStore, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(IdempotencyHeader)
			if header == "" || !isUnsafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := scopedKey(r, header)
			requestID := RequestIDFromContext(ctx)

			if replayed, err := replayIfCached(ctx, w, store, key); err != nil {
				log.Warn("Idempotency lookup failed", "request_id", requestID, "error", err)
				next.ServeHTTP(w, r)
				return
			} else if replayed {
				log.Info("Replayed idempotent response", "request_id", requestID, "idempotency_key", header)
				return
			}

			acquired, err := store.Acquire(ctx, key)
			if err != nil {
				log.Warn("Idempotency lock failed", "request_id", requestID, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				httputil.WriteRawError(w, apperrors.Conflict("A request with this Idempotency-Key is already in progress"))
				return
			}
			defer func() {
				if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
					log.Warn("Idempotency unlock failed", "request_id", requestID, "error", err)
				}
			}()

			// The previous holder may have finished between the lookup and the lock.
			if replayed, err := replayIfCached(ctx, w, store, key); err == nil && replayed {
				return
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			next.ServeHTTP(capture, r)

			if !shouldCacheResponse(capture.statusCode) {
				return
			}
			cached := &CachedResponse{
				StatusCode: capture.statusCode,
				Headers:    w.Header().Clone(),
				Body:       capture.body.Bytes(),
			}
			if err := store.Set(context.WithoutCancel(ctx), key, cached); err != nil {
				log.Warn("Failed to cache idempotent response", "request_id", requestID, "error", err)
			}
		})
	}
}

func isUnsafeMethod(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch || method == http.MethodDelete
}

func scopedKey(r *http.Request, key string) string {
	return r.Method + " " + r.URL.Path + " " + key
}

func replayIfCached(ctx context.Context, w http.ResponseWriter, store IdempotencyStore, key string) (bool, error) {
	cached, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}

	for k, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(k, value)
		}
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
	return true, nil
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
