package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"veritel-hq/dialguard/pkg/server/types"
)

// TimeoutMiddleware enforces a per-request timeout using
// context.WithTimeout. If the timeout is exceeded, the request context is
// cancelled and a 504 Gateway Timeout error is returned.
//
// The inner handler writes to a buffer, so exactly one response reaches
// the wire even if the handler finishes after the deadline. Buffering
// makes this middleware unsuitable for streaming endpoints; mount those
// outside it.
//
// The request timeout should exceed the engine's evaluation timeout: the
// engine detaches evaluation from caller cancellation, so an evaluation
// that outlives the request still completes and lands in the decision
// record, but the client sees this 504 instead of its verdict.
//
// Example usage:
//
//	handler = TimeoutMiddleware(15 * time.Second)(handler)
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			buffered := newBufferedResponse()
			done := make(chan struct{})
			panicChan := make(chan interface{}, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- p
					}
				}()
				next.ServeHTTP(buffered, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicChan:
				// Re-panic on the request goroutine so the recovery
				// middleware sees it.
				panic(p)

			case <-done:
				buffered.flushTo(w)
				return

			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					errResp := types.NewGatewayTimeoutError(
						"Request timeout: the request took too long to complete",
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_ = json.NewEncoder(w).Encode(errResp)
				}
			}
		})
	}
}

// bufferedResponse is the http.ResponseWriter handed to the inner
// handler. It owns a private header map and body buffer, so the handler
// never touches the real connection; only flushTo does, exactly once,
// from the request goroutine.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	code   int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

// Header implements http.ResponseWriter.
func (b *bufferedResponse) Header() http.Header {
	return b.header
}

// WriteHeader implements http.ResponseWriter.
func (b *bufferedResponse) WriteHeader(code int) {
	if b.code == 0 {
		b.code = code
	}
}

// Write implements http.ResponseWriter.
func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.code == 0 {
		b.code = http.StatusOK
	}
	return b.body.Write(p)
}

// flushTo copies the buffered response to the real writer. Only called
// after the handler goroutine has finished.
func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for key, values := range b.header {
		dst[key] = values
	}

	code := b.code
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)

	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
