package middleware

import (
	"net/http"
	"strings"

	"github.com/tillworks/tillworks-backend/api/responses"
	pkgauth "github.com/tillworks/tillworks-backend/pkg/auth"
	"github.com/tillworks/tillworks-backend/pkg/config"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// acting tenant/store/user.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			act := claims.Actor()
			if err := act.Validate(); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "incomplete token context"))
				return
			}

			ctx := WithActor(r.Context(), act)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"tenant_id":  act.TenantID.String(),
					"store_id":   act.StoreID.String(),
					"user_id":    act.UserID.String(),
					"actor_role": string(act.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
