package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in  string
		out slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.out {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentRepository, Output: &buf})
	l.Info("saved", FieldKey, "invoices")
	l.WithComponent(ComponentPDF).Info("rendered")

	out := buf.String()
	if !strings.Contains(out, "component=repository") || !strings.Contains(out, "key=invoices") {
		t.Fatalf("missing repository fields: %s", out)
	}
	if strings.Count(out, "component=") != 2 || !strings.Contains(out, "component=pdf") {
		t.Fatalf("component should appear once per line: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf})
	l.Info("hello")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"component":"app"`) {
		t.Fatalf("unexpected json output: %s", buf.String())
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Component: ComponentHTTP})
	h := Middleware(l, func(*http.Request) string { return "req_1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()).Component() != ComponentHTTP {
			t.Errorf("logger missing from context")
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/invoices/x", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "request_id=req_1", "status_code=404", "path=/api/invoices/x"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}

func TestLogErrorAndFromContextDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf})
	LogError(context.Background(), l, "write failed", errors.New("disk full"), OpUpdate, nil)
	if !strings.Contains(buf.String(), `error="disk full"`) || !strings.Contains(buf.String(), "operation=update") {
		t.Fatalf("unexpected: %s", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
