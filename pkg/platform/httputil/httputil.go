// Package httputil centralizes JSON response writing and request decoding so
// handlers stay thin and every endpoint speaks the same envelope.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "auditadmin/pkg/domain-errors"
)

// WriteEnvelope serializes an envelope, mirroring its StatusCode onto the
// transport status line.
func WriteEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteSuccess is shorthand for WriteEnvelope(w, Success(...)).
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	WriteEnvelope(w, Success(statusCode, message, data))
}

// WriteError translates a domain error into a failure envelope. Business
// failures surface their message; internal and unclassified errors surface a
// generic message only (full detail belongs in server logs).
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteEnvelope(w, Fail(dErrors.ToHTTPStatus(code), dErrors.MessageOf(err)))
}

// DecodeAndPrepare decodes a JSON request body into T and runs its Validate
// method. On failure it writes the 400 envelope and returns ok=false so the
// handler can bail with a one-line check.
func DecodeAndPrepare[T interface{ Validate() error }](
	w http.ResponseWriter,
	r *http.Request,
	logger *slog.Logger,
	ctx context.Context,
	requestID string,
) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "malformed request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return req, false
	}
	return req, true
}
