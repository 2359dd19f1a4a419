package middleware

import (
	"context"
	"net/http"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/utils"
)

const userIDKey contextKey = "user_id"

// RequireAuth rejects requests without a valid bearer token and exposes the
// token subject through UserIDFromContext.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := utils.VerifyToken(r, secret)
			if err != nil {
				utils.WriteError(w, apperrors.New(apperrors.KindUnauthenticated, apperrors.WithMessagef("%s", err.Error())))
				return
			}
			userID, err := utils.UserIDFromClaims(claims)
			if err != nil {
				utils.WriteError(w, apperrors.New(apperrors.KindUnauthenticated, apperrors.WithMessagef("%s", err.Error())))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID is used by tests and internal callers that bypass RequireAuth.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
