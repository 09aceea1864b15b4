package introspect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") {
		case "good":
			_, _ = w.Write([]byte(`{"user_id":" dr-house ","email":"h@pp.th"}`))
		case "anon":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
}

func TestVerifier(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	c, err := NewClient(Config{VerifyURL: srv.URL + "/v1/tokens/verify", APIKey: "k"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	v := NewVerifier(c)

	claims, err := v.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "dr-house" {
		t.Fatalf("expected trimmed user id, got %q", claims.UserID)
	}

	if _, err := v.Verify(context.Background(), "bad"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "anon"); err == nil {
		t.Fatalf("expected error for missing user_id")
	}
	if _, err := v.Verify(context.Background(), "  "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}

func TestVerifier_NotConfigured(t *testing.T) {
	c, _ := NewClient(Config{})
	if _, err := NewVerifier(c).Verify(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
