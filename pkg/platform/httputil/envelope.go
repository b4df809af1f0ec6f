package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response shape every endpoint returns, success or
// failure, so client integrations rely on a single parsing contract.
// StatusCode mirrors the transport status. Success envelopes always carry the
// data key, null when the operation has no payload; failure envelopes omit it.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// MarshalJSON drops the data key on failure envelopes and keeps it, possibly
// null, on success ones.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.StatusCode >= http.StatusBadRequest {
		return json.Marshal(struct {
			StatusCode int    `json:"statusCode"`
			Message    string `json:"message"`
		}{e.StatusCode, e.Message})
	}
	type envelope Envelope
	return json.Marshal(envelope(e))
}

// Success builds a success envelope. Data may be nil for operations without a
// return payload (deletes, activations); the status code is carried through
// unchanged.
func Success(statusCode int, message string, data any) Envelope {
	return Envelope{StatusCode: statusCode, Message: message, Data: data}
}

// Fail builds a failure envelope. Failures never carry Data.
func Fail(statusCode int, message string) Envelope {
	return Envelope{StatusCode: statusCode, Message: message}
}
