package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medication-timeline/internal/ports/auth"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type verifierStub struct{}

func (verifierStub) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token == "ok" {
		return auth.Claims{UserID: "u-token"}, nil
	}
	return auth.Claims{}, errors.New("bad token")
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := ClaimsFrom(r.Context())
		_, _ = w.Write([]byte(c.UserID))
	})
}

func TestAuthContext(t *testing.T) {
	cases := []struct {
		name     string
		verifier auth.AuthVerifier
		header   string
		value    string
		want     string
	}{
		{"dev con header", nil, "X-Debug-User-ID", "u-dev", "u-dev"},
		{"dev sin header", nil, "", "", ""},
		{"token válido", verifierStub{}, "Authorization", "Bearer ok", "u-token"},
		{"token inválido sigue anónimo", verifierStub{}, "Authorization", "Bearer nope", ""},
		{"debug ignorado con verifier", verifierStub{}, "X-Debug-User-ID", "u-dev", ""},
		{"esquema no bearer", verifierStub{}, "Authorization", "Basic ok", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rr := httptest.NewRecorder()
			AuthContext(tc.verifier)(claimsEcho()).ServeHTTP(rr, req)

			if rr.Body.String() != tc.want {
				t.Fatalf("expected user %q, got %q", tc.want, rr.Body.String())
			}
		})
	}
}

func TestContributorFrom(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-dev")
	req.Header.Set("X-Debug-User-Name", "Dra. Gómez")

	var got string
	AuthContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ContributorFrom(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)

	if got != "Dra. Gómez" {
		t.Fatalf("expected display name as contributor, got %q", got)
	}
	if ContributorFrom(context.Background()) != "" {
		t.Fatal("expected empty contributor without claims")
	}
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/patients/x", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusNotFound) || fields["path"] != "/patients/x" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestTracing_PassesThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	Tracing("test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}
