package http

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/model/auth"
	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/usecase"
)

// Header names set by the authenticating gateway in front of this
// service. Identity verification happens there; the engine only
// consumes the result.
const (
	headerSub  = "X-Lifeline-Sub"
	headerRole = "X-Lifeline-Role"
)

// identityMiddleware resolves the caller identity from gateway headers
// and stores it in the request context
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub := r.Header.Get(headerSub)
		if sub == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		role := types.Role(r.Header.Get(headerRole))
		if role == "" {
			role = types.RoleSubject
		}
		if !role.IsValid() {
			http.Error(w, "Invalid role", http.StatusUnauthorized)
			return
		}

		ctx := auth.ContextWith(r.Context(), &auth.Identity{Sub: sub, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFrom extracts the caller identity placed by identityMiddleware
func identityFrom(ctx context.Context) (*auth.Identity, error) {
	identity, err := auth.FromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(usecase.ErrNotAuthorized, "no caller identity")
	}
	return identity, nil
}
