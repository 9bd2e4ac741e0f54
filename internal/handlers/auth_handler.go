package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"timetable-service/internal/service"
	"timetable-service/pkg/response"

	"github.com/rs/zerolog/log"
)

// AuthHandler обрабатывает вход и выход оператора
type AuthHandler struct {
	authService  *service.AuthService
	isProduction bool
	sameSite     http.SameSite
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService, isProduction bool, sameSite string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		isProduction: isProduction,
		sameSite:     parseSameSite(sameSite),
	}
}

func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// LoginRequest структура запроса на вход
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse структура ответа на вход
type LoginResponse struct {
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, response.ErrCodeMissingField, "Username and password are required")
		return
	}

	token, expiresAt, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, response.ErrCodeInvalidCredentials, "Invalid username or password")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		response.InternalError(w, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.authService.MaxAge().Seconds()),
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: h.sameSite,
	})

	response.OK(w, LoginResponse{
		Username:  req.Username,
		ExpiresAt: expiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Logout обрабатывает POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: h.sameSite,
	})
	response.NoContent(w)
}
