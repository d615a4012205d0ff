package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cartloop/shopapi/internal/auth/apperr"
)

const maxBodyBytes = 2 << 20 // 2 MiB, generous for a profile with an avatar

// decodeJSON reads a JSON request body into dst. Unknown fields are ignored,
// malformed bodies are a client error.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	return nil
}

// decodeAvatar decodes an optional base64 avatar field, tolerating a
// data-URL prefix ("data:image/png;base64,...."). An empty field means no
// avatar was supplied.
func decodeAvatar(field string) ([]byte, error) {
	if field == "" {
		return nil, nil
	}

	payload := field
	if strings.HasPrefix(payload, "data:") {
		if _, rest, ok := strings.Cut(payload, ","); ok {
			payload = rest
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperr.BadRequest("Invalid avatar image")
	}
	return data, nil
}
