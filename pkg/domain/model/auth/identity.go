package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// Identity represents the authenticated caller of an engine operation.
// Identity resolution itself happens in the surrounding request layer;
// the engine only consumes the result for visibility checks.
type Identity struct {
	Sub  string
	Role types.Role
}

// Elevated reports whether the caller may read incidents they do not own
func (i *Identity) Elevated() bool {
	return i.Role.Elevated()
}

type ctxKey struct{}

// ContextWith returns a context carrying the given identity
func ContextWith(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the caller identity from the context
func FromContext(ctx context.Context) (*Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	if !ok || id == nil {
		return nil, goerr.New("no identity in context")
	}
	return id, nil
}
