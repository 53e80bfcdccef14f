package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	apperrors "courts/pkg/errors"
	httputil "courts/pkg/http"
	"courts/pkg/logger"
)

// timeoutWriter buffers headers locally so a handler still running after the
// deadline never races with the timeout response.
type timeoutWriter struct {
	w      http.ResponseWriter
	header http.Header

	mu       sync.Mutex
	timedOut bool
	written  bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.written {
		return
	}
	dst := tw.w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	tw.written = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

func RequestTimeout(timeout time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := &timeoutWriter{w: w, header: make(http.Header)}

			done := make(chan struct{})
			panicCh := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicCh <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case p := <-panicCh:
				panic(p)
			case <-done:
				tw.mu.Lock()
				if !tw.written {
					dst := w.Header()
					for k, v := range tw.header {
						dst[k] = v
					}
				}
				tw.mu.Unlock()
				return
			case <-ctx.Done():
				tw.mu.Lock()
				if tw.written {
					// Response already started; let the handler finish it.
					tw.mu.Unlock()
					select {
					case p := <-panicCh:
						panic(p)
					case <-done:
					}
					return
				}
				tw.timedOut = true
				tw.mu.Unlock()

				if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return
				}
				log.Warn("Request timed out",
					"request_id", RequestIDFromContext(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout,
				)
				httputil.WriteRawError(w, apperrors.Timeout("Request timeout"))
			}
		})
	}
}
