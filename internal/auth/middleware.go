package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Define a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key used to store the session user in the context
	UserContextKey contextKey = "user"
)

type SessionMiddleware struct {
	service    *Service
	cookieName string
	log        *zap.Logger
}

func NewSessionMiddleware(service *Service, cookieName string, log *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		service:    service,
		cookieName: cookieName,
		log:        log,
	}
}

// LoadSession resolves the session cookie and stores the user in the request
// context. Requests without a valid session pass through unchanged.
func (m *SessionMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.service.CurrentUser(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				next.ServeHTTP(w, r)
				return
			}
			m.log.Error("failed to load session", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: messageServerError})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserContextKey, user)))
	})
}

// Helper function to get the session user from context
func GetUserFromContext(ctx context.Context) (*PublicUser, error) {
	user, ok := ctx.Value(UserContextKey).(*PublicUser)
	if !ok || user == nil {
		return nil, ErrNoSession
	}
	return user, nil
}
