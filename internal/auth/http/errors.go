package http

import (
	"net/http"

	"github.com/cartloop/shopapi/internal/auth/apperr"
	"github.com/cartloop/shopapi/pkg/httpx"
	"github.com/cartloop/shopapi/pkg/slogx"
)

// WriteError is the single error writer for the whole surface. Every failure,
// whatever its cause, is normalized to one {status, message} pair and emitted
// as the uniform failure envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.Normalize(err)

	log := slogx.FromContext(r.Context())
	if ae.Status >= http.StatusInternalServerError {
		// The client sees the generic message; the cause goes to the log.
		log.Error("request failed", "status", ae.Status, "err", err)
	} else {
		log.Debug("request rejected", "status", ae.Status, "msg", ae.Message)
	}

	httpx.WriteJSON(w, ae.Status, ErrorResponse{
		Success: false,
		Message: ae.Message,
	})
}

// handle adapts a fallible handler using the shared error writer.
func handle(h httpx.HandlerFunc) http.Handler {
	return httpx.Adapt(h, WriteError)
}
