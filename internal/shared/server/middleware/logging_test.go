package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"career-mentor/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	telemetry.Configure("debug", &buf)
	defer telemetry.Configure("info", nil)

	router := gin.New()
	router.Use(RequestID(), Session(SessionConfig{CookieName: "cm_session"}), Logging())
	router.POST("/analyze", func(c *gin.Context) {
		c.Set("stepTransition", "input->pending")
		c.Redirect(http.StatusSeeOther, "/")
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.Header.Set("X-Request-Id", "req-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatalf("expected log output")
	}
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "session", "route", "duration_ms", "status", "step_transition"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["request_id"] != "req-1" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["step_transition"] != "input->pending" {
		t.Fatalf("unexpected step_transition: %v", payload["step_transition"])
	}
	if s, _ := payload["session"].(string); len(s) != 16 {
		t.Fatalf("expected hashed session key, got %v", payload["session"])
	}
	if payload["level"] != "info" {
		t.Fatalf("expected info level for a redirect, got %v", payload["level"])
	}
}

func TestLoggingLevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	telemetry.Configure("debug", &buf)
	defer telemetry.Configure("info", nil)

	router := gin.New()
	router.Use(Logging())
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/bad", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"level":"warn"`) {
		t.Fatalf("expected warn for 400: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"error"`) {
		t.Fatalf("expected error for 502: %s", lines[1])
	}
}
