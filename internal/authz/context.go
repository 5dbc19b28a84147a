package authz

import (
	"context"
	"net/http"
	"strings"
)

// Principal is the authenticated identity passed into every lifecycle
// operation. The core never reads identity from ambient state.
type Principal struct {
	ID    string
	Email string
}

func (p Principal) IsValid() bool {
	return p.ID != "" && p.Email != ""
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal stores the authenticated principal on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || !p.IsValid() {
		return Principal{}, false
	}
	return p, true
}

func PrincipalFromRequest(r *http.Request) (Principal, bool) {
	return PrincipalFromContext(r.Context())
}
