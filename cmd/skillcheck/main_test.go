package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggingMiddleware(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	var flushErr error
	h := loggingMiddleware(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		w.WriteHeader(http.StatusTeapot)
		flushErr = rc.Flush()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/skills", nil))

	if flushErr != nil || !rec.Flushed {
		t.Fatalf("flush did not reach the response writer: %v", flushErr)
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status %d", rec.Code)
	}
	if out := logs.String(); !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/skills") {
		t.Fatalf("log line %q", out)
	}
}
