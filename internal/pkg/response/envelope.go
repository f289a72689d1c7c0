package response

import (
	"encoding/json"
	"io"
	"net/http"
)

// Envelope is Response as seen by a consumer of the API: data stays raw
// until the caller knows what shape to decode it into.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Decode reads an envelope. Bodies that are not JSON (a proxy error page,
// an empty 502) decode to a zero Envelope rather than failing.
func Decode(r io.Reader) Envelope {
	var env Envelope
	if body, err := io.ReadAll(r); err == nil {
		_ = json.Unmarshal(body, &env)
	}
	return env
}

// Reason returns the text a user should see for a failed call: the error
// field, then the message, then the status text of code.
func (e Envelope) Reason(code int) string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	default:
		return http.StatusText(code)
	}
}
