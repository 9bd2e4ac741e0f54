package middleware

import (
	"context"
	"net/http"

	"timetable-service/internal/service"
	"timetable-service/pkg/auth"
	"timetable-service/pkg/response"
)

// ContextKey тип для ключей контекста
type ContextKey string

const (
	// SessionContextKey ключ контекста для текущей сессии оператора
	SessionContextKey ContextKey = "session"
)

// AuthMiddleware обрабатывает аутентификацию путем валидации сессионных
// cookies. Сессия оператора живет целиком в HMAC-подписанном cookie, поэтому
// обращений к базе данных здесь нет.
type AuthMiddleware struct {
	authService *service.AuthService
}

// NewAuthMiddleware создает новый AuthMiddleware
func NewAuthMiddleware(authService *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAdmin middleware, который валидирует сессионный cookie оператора
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil {
			response.Unauthorized(w, "Authentication required")
			return
		}

		session, err := m.authService.ValidateToken(cookie.Value)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired session")
			return
		}

		ctx := SetSessionInContext(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionFromContext извлекает сессию из контекста
func GetSessionFromContext(ctx context.Context) (*auth.SessionData, bool) {
	session, ok := ctx.Value(SessionContextKey).(*auth.SessionData)
	return session, ok
}

// SetSessionInContext добавляет сессию в контекст
func SetSessionInContext(ctx context.Context, session *auth.SessionData) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}
