package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"studyhub/client/internal/config"
)

func newTestClient(t *testing.T, token string, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.BackendConfig{BaseURL: srv.URL},
		func() string { return token }, zerolog.Nop())
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth, gotRequestID string
	client := newTestClient(t, "my-token", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{}`))
	}))

	if err := client.do(context.Background(), "GET", "/ping", nil, nil); err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if gotAuth != "Bearer my-token" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected a request id header")
	}
}

func TestAnonymousRequestSentWithoutHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	if err := client.do(context.Background(), "GET", "/public", nil, nil); err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no auth header, got %q", gotAuth)
	}
}

func TestUnauthorizedMapsToSessionExpired(t *testing.T) {
	client := newTestClient(t, "stale", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	}))

	err := client.do(context.Background(), "GET", "/users/1", nil, nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestNotFoundMapsToErrNotFound(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such user"}`, http.StatusNotFound)
	}))

	_, err := client.UserByProviderUID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBlobErrorBodyNormalized(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A JSON error served as a binary blob, the download-endpoint case.
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Không đủ điểm để tải tài liệu"}`))
	}))

	err := client.do(context.Background(), "GET", "/documents/3/download", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.Status)
	}
	if apiErr.Message != "Không đủ điểm để tải tài liệu" {
		t.Errorf("blob body not normalized: %q", apiErr.Message)
	}
}

func TestNonJSONErrorBodyFallsBackToText(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))

	err := client.do(context.Background(), "GET", "/x", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("expected text fallback, got %q", apiErr.Message)
	}
}

func TestListUnwrapsValuesEnvelope(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"$values":[{"id":1,"title":"Giải tích 1"},{"id":2,"title":"Vật lý đại cương"}]}`))
	}))

	docs, err := client.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs) != 2 || docs[0].Title != "Giải tích 1" {
		t.Errorf("envelope not unwrapped: %+v", docs)
	}
}

func TestListAcceptsPlainArray(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":3,"title":"Hóa học"}]`))
	}))

	docs, err := client.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != 3 {
		t.Errorf("plain array not decoded: %+v", docs)
	}
}

func TestChatQueryPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chatbot/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		decodeJSONBody(t, r, &got)
		w.Write([]byte(`{"reply":"Bạn có 120 điểm"}`))
	}))

	reply, err := client.ChatQuery(context.Background(), "Xem điểm của tôi", 7)
	if err != nil {
		t.Fatalf("ChatQuery failed: %v", err)
	}
	if reply != "Bạn có 120 điểm" {
		t.Errorf("unexpected reply %q", reply)
	}
	if got["message"] != "Xem điểm của tôi" || got["userId"] != float64(7) {
		t.Errorf("unexpected payload: %v", got)
	}
}
