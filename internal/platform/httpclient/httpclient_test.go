package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"u1"}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	var out struct {
		UserID string `json:"user_id"`
	}
	if err := c.DoJSON(context.Background(), http.MethodPost, "/verify", map[string]string{"X-Api-Key": "secret"}, map[string]string{"token": "t"}, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if out.UserID != "u1" {
		t.Fatalf("expected u1, got %q", out.UserID)
	}

	err = c.DoJSON(context.Background(), http.MethodPost, "verify", nil, nil, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestDoJSON_BreakerOpensOnUpstreamFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, BreakerName: "test", BreakerFailures: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for i := 0; i < 2; i++ {
		_ = c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	}
	err = c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", calls)
	}
}

func TestDoJSON_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := New(Options{BaseURL: srv.URL, BreakerName: "test", BreakerFailures: 1})
	for i := 0; i < 3; i++ {
		err := c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		if errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("401 must not open the breaker")
		}
	}
}

func TestResolveURL(t *testing.T) {
	c, _ := New(Options{})
	if _, err := c.resolveURL("/x"); err == nil {
		t.Fatalf("expected error for relative path without base url")
	}
	if got, _ := c.resolveURL("https://auth.local/v1"); got != "https://auth.local/v1" {
		t.Fatalf("absolute url must pass through, got %s", got)
	}
}
