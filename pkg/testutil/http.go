// Package testutil provides common helpers for handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditadmin/pkg/platform/httputil"
)

// NewJSONRequest creates an HTTP request with a JSON body.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// UnmarshalEnvelope decodes the standard response envelope.
func UnmarshalEnvelope(t *testing.T, rr *httptest.ResponseRecorder) httputil.Envelope {
	t.Helper()
	var env httputil.Envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env), "failed to decode response envelope")
	return env
}

// UnmarshalData decodes the envelope and then its data payload into T.
func UnmarshalData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	env := UnmarshalEnvelope(t, rr)
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err, "failed to re-marshal envelope data")
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "failed to decode envelope data")
	return out
}

// AssertEnvelope asserts the transport status, the mirrored envelope status
// and the envelope message all match.
func AssertEnvelope(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	env := UnmarshalEnvelope(t, rr)
	assert.Equal(t, status, rr.Code, "unexpected transport status")
	assert.Equal(t, status, env.StatusCode, "envelope status must mirror transport status")
	assert.Equal(t, message, env.Message, "unexpected envelope message")
}

// AssertFailure asserts a failed response: matching statuses and no data.
func AssertFailure(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	env := UnmarshalEnvelope(t, rr)
	assert.Equal(t, status, rr.Code, "unexpected transport status")
	assert.Equal(t, status, env.StatusCode, "envelope status must mirror transport status")
	assert.Nil(t, env.Data, "failure envelope must not carry data")
}
