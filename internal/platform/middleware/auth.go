package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/platform/httputil"
	"sutura/pkg/requestcontext"
)

// TokenValidator resolves a bearer token into the actor tuple it carries.
type TokenValidator interface {
	ActorFromToken(tokenString string) (domain.Actor, error)
}

// RequireAuth rejects requests without valid identity claims and injects the
// resolved actor into the request context. Every scoped endpoint sits behind
// this; handlers and services receive the actor explicitly from context, not
// from shared state.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthenticated access - missing token",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "missing or invalid Authorization header"))
				return
			}

			actor, err := validator.ActorFromToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthenticated access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}
