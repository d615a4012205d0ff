package httpx

import (
	"fmt"
	"net/http"

	"github.com/cartloop/shopapi/pkg/slogx"
)

// HandlerFunc is a fallible HTTP handler. Handlers report failures by
// returning an error instead of writing error bodies themselves; the adapter
// forwards every failure, including recovered panics, to a single
// ErrorWriter so the error contract lives in one place.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// ErrorWriter turns a handler failure into a well-formed HTTP response.
type ErrorWriter func(http.ResponseWriter, *http.Request, error)

// Adapt converts a fallible handler into an http.Handler. A panic inside the
// handler is recovered, logged, and routed through ew like any other error,
// so a broken handler can never crash the process or leave a request hanging.
func Adapt(h HandlerFunc, ew ErrorWriter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slogx.FromContext(r.Context()).Error("handler panic", "panic", rec)
				ew(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()

		if err := h(w, r); err != nil {
			ew(w, r, err)
		}
	})
}
