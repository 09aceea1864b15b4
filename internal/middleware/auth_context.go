package middleware

import (
	"context"
	"net/http"
	"strings"

	"medication-timeline/internal/ports/auth"
)

type ctxKey struct{}

const (
	debugUserHeader = "X-Debug-User-ID"
	debugNameHeader = "X-Debug-User-Name"
)

// AuthContext resuelve quién hace el request y deja los claims en el contexto.
// Nunca corta el request: sin identidad los handlers atribuyen a nadie.
//
// Sin verifier (modo dev) se aceptan X-Debug-User-ID y X-Debug-User-Name.
// Con verifier sólo cuenta el bearer token; un token inválido se ignora.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveClaims(r, verifier)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func resolveClaims(r *http.Request, verifier auth.AuthVerifier) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(debugUserHeader))
		if uid == "" {
			return auth.Claims{}, false
		}
		return auth.Claims{
			UserID: uid,
			Name:   strings.TrimSpace(r.Header.Get(debugNameHeader)),
		}, true
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}
	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		return auth.Claims{}, false
	}
	return claims, true
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(auth.Claims)
	return c, ok
}

// ContributorFrom devuelve la firma del usuario autenticado, o "" si no hay.
func ContributorFrom(ctx context.Context) string {
	c, ok := ClaimsFrom(ctx)
	if !ok {
		return ""
	}
	return c.Contributor()
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
