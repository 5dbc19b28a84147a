package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPrincipalNormalizesEmail(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{ID: "u1", Email: "  User@Example.COM "})

	p, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", p.Email)
}

func TestPrincipalFromContextMissing(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)
}

func TestPrincipalFromContextInvalid(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{ID: "u1"})
	_, ok := PrincipalFromContext(ctx)
	assert.False(t, ok)
}
