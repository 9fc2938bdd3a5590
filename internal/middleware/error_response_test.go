package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/essaycheck/internal/model"
)

func TestWriteErrorResponse_WithDetail(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, 401, model.NewInvalidCredentialError("upstream detail"))

	if w.Code != 401 {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "Token is invalid or expired" {
		t.Errorf("error = %q", body["error"])
	}
	if body["details"] != "upstream detail" {
		t.Errorf("details = %q", body["details"])
	}
}

func TestWriteErrorResponse_OmitsEmptyDetails(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, 429, model.NewRateLimitedError())

	raw := w.Body.String()
	if strings.Contains(raw, "details") {
		t.Errorf("body = %q, want no details field", raw)
	}
}

func TestWriteInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	if w.Code != 500 {
		t.Errorf("status = %d, want 500", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !strings.HasPrefix(body["error"], "Internal server error") {
		t.Errorf("error = %q", body["error"])
	}
}
