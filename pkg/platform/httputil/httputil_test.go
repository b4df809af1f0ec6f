package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "auditadmin/pkg/domain-errors"
)

func TestEnvelopeConstructors(t *testing.T) {
	t.Run("fail never carries data", func(t *testing.T) {
		env := Fail(http.StatusBadRequest, "invalid input")
		if env.Data != nil {
			t.Fatalf("expected Fail envelope to have no data, got %v", env.Data)
		}
		if env.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", env.StatusCode)
		}
	})

	t.Run("success preserves the given status code", func(t *testing.T) {
		env := Success(http.StatusCreated, "created", map[string]string{"id": "x"})
		if env.StatusCode != http.StatusCreated {
			t.Fatalf("expected status 201 unchanged, got %d", env.StatusCode)
		}
		if env.Data == nil {
			t.Fatalf("expected success envelope to carry data")
		}
	})

	t.Run("success with nil payload still succeeds", func(t *testing.T) {
		env := Success(http.StatusOK, "deleted", nil)
		if env.StatusCode != http.StatusOK || env.Message != "deleted" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	})
}

func TestEnvelopeDataKey(t *testing.T) {
	t.Run("success without payload serializes a null data key", func(t *testing.T) {
		raw, err := json.Marshal(Success(http.StatusOK, "deleted", nil))
		if err != nil {
			t.Fatalf("marshal envelope: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if _, ok := body["data"]; !ok {
			t.Fatalf("success envelope must carry the data key, got %s", raw)
		}
		if body["data"] != nil {
			t.Fatalf("expected null data, got %v", body["data"])
		}
	})

	t.Run("failure omits the data key entirely", func(t *testing.T) {
		raw, err := json.Marshal(Fail(http.StatusConflict, "referenced"))
		if err != nil {
			t.Fatalf("marshal envelope: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if _, ok := body["data"]; ok {
			t.Fatalf("failure envelope must omit data, got %s", raw)
		}
	})
}

func TestWriteEnvelopeMirrorsStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteEnvelope(w, Success(http.StatusCreated, "created", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected transport status 201, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["statusCode"] != float64(http.StatusCreated) {
		t.Fatalf("expected statusCode to mirror transport status, got %v", body["statusCode"])
	}
}

func TestWriteError(t *testing.T) {
	t.Run("internal error hides detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["message"] == "db failed" {
			t.Fatalf("internal detail leaked to client")
		}
		if _, ok := body["data"]; ok {
			t.Fatalf("failure envelope must omit data")
		}
	})

	t.Run("business failure keeps its message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "Tax Type is referenced by other records"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["message"] != "Tax Type is referenced by other records" {
			t.Fatalf("expected business reason in message, got %v", body["message"])
		}
	})

	t.Run("unclassified error maps to 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("surprise"))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
	})
}
