// Package auth define el puerto de verificación de identidad. Los claims sólo
// se usan para atribuir quién registró una prescripción.
package auth

import (
	"context"
	"strings"
)

type Claims struct {
	UserID string
	Email  string
	Name   string
}

// Contributor es el nombre con el que se firma un registro: nombre visible,
// si no email, si no el ID.
func (c Claims) Contributor() string {
	for _, v := range []string{c.Name, c.Email, c.UserID} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// AuthVerifier valida un bearer token.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
