// internal/acl/middleware.go
//
// Chi middleware that enforces RBAC for one site.

package acl

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/auth"
)

// Authorizer is satisfied by Checker.  Handlers depend on this so tests can
// swap in a stub.
type Authorizer interface {
	Allowed(ctx context.Context, userID int64, site, component, action string) (bool, error)
}

// SiteFunc extracts the site slug a request targets.
type SiteFunc func(*http.Request) string

// RequirePermission verifies that the user's roles on the request's site
// allow component/action.  A nil Authorizer lets every authenticated user
// through; deployments without a dashboard database rely on the session
// alone.
func RequirePermission(az Authorizer, site SiteFunc, component, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserID(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if az == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := az.Allowed(r.Context(), uid, site(r), component, action)
			if err != nil {
				zap.L().Error("acl check", zap.Int64("user", uid), zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !allowed {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
