package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func requestIDFor(t *testing.T, inbound string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set("X-Request-Id", inbound)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	return rec.Header().Get("X-Request-Id")
}

func TestRequestIDGenerated(t *testing.T) {
	got := requestIDFor(t, "")
	if uuid.Validate(got) != nil {
		t.Errorf("expected a generated uuid, got %q", got)
	}
}

func TestRequestIDInboundUUIDKept(t *testing.T) {
	inbound := uuid.NewString()
	if got := requestIDFor(t, inbound); got != inbound {
		t.Errorf("inbound uuid replaced: got %q, want %q", got, inbound)
	}
}

func TestRequestIDMalformedInboundReplaced(t *testing.T) {
	got := requestIDFor(t, "not-a-uuid")
	if uuid.Validate(got) != nil {
		t.Errorf("malformed inbound id kept: %q", got)
	}
	if got == "not-a-uuid" {
		t.Error("malformed inbound id echoed back")
	}
}
