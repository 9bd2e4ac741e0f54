package service

import (
	"errors"
	"fmt"
	"time"

	"timetable-service/internal/config"
	"timetable-service/pkg/auth"
	"timetable-service/pkg/hash"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials возвращается при неверной паре логин/пароль
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
)

// AuthService проверяет учетные данные единственного оператора и выпускает
// подписанные сессионные токены. Таблицы пользователей нет: учетные данные
// приходят из конфигурации, сессия целиком живет в HMAC-подписанном cookie.
type AuthService struct {
	username     string
	passwordHash string
	sessions     *auth.SessionManager
	maxAge       time.Duration
}

// NewAuthService создает AuthService из конфигурации. Если задан только
// открытый пароль (development), он хешируется на старте; production
// конфигурация обязана передать готовый bcrypt-хеш.
func NewAuthService(admin config.AdminConfig, session config.SessionConfig) (*AuthService, error) {
	passwordHash := admin.PasswordHash
	if passwordHash == "" && admin.Password != "" {
		hashed, err := hash.HashPassword(admin.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		passwordHash = hashed
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("учетные данные оператора не настроены: задайте ADMIN_PASSWORD_HASH или ADMIN_PASSWORD")
	}
	if !hash.IsHashValid(passwordHash) {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH не является корректным bcrypt-хешем")
	}

	return &AuthService{
		username:     admin.Username,
		passwordHash: passwordHash,
		sessions:     auth.NewSessionManager(session.Secret),
		maxAge:       session.MaxAge,
	}, nil
}

// Login проверяет учетные данные и возвращает подписанный сессионный токен
// вместе со временем его истечения.
func (s *AuthService) Login(username, password string) (string, time.Time, error) {
	// Сравнение с bcrypt выполняется и при неверном имени пользователя,
	// чтобы не отличать по времени ответа "нет такого пользователя" от
	// "неверный пароль".
	passwordErr := hash.CheckPassword(password, s.passwordHash)
	if username != s.username || passwordErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.maxAge)
	token, err := s.sessions.CreateSessionToken(uuid.New(), username, expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session token: %w", err)
	}
	return token, expiresAt, nil
}

// ValidateToken проверяет подпись и срок действия сессионного токена.
func (s *AuthService) ValidateToken(token string) (*auth.SessionData, error) {
	data, err := s.sessions.ValidateSessionToken(token)
	if err != nil {
		return nil, err
	}
	if data.Username != s.username {
		return nil, auth.ErrInvalidSession
	}
	return data, nil
}

// MaxAge возвращает срок жизни сессии.
func (s *AuthService) MaxAge() time.Duration { return s.maxAge }
