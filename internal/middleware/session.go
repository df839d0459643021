package middleware

import (
	"context"
	"net/http"

	"foodhub/internal/model"
	"foodhub/internal/session"

	"github.com/rs/zerolog"
)

type sessionKey struct{}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the customer session stored by Session.
func SessionFrom(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(model.Session)
	return s, ok
}

// Session loads the customer's applied coupon into the request context.
// It must run after Authenticate.
func Session(store session.Store, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required")
				return
			}

			code, err := store.Coupon(r.Context(), p.UserID)
			if err != nil {
				logger.Error().Err(err).Str("user_id", p.UserID.String()).Msg("failed to load session")
				writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "An error occurred")
				return
			}

			sess := model.Session{CustomerID: p.UserID, CouponCode: code}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
