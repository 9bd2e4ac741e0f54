package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Session  SessionConfig
	Admin    AdminConfig
	Solver   SolverConfig
}

// DatabaseConfig содержит конфигурацию подключения к базе данных
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// ServerConfig содержит конфигурацию сервера
type ServerConfig struct {
	Port             string
	Env              string   // development, production
	ProductionDomain string   // Domain for production environment
	TrustedProxies   []string // Список доверенных прокси-серверов (для X-Forwarded-For)
}

// SessionConfig содержит конфигурацию управления сессиями
type SessionConfig struct {
	Secret   string
	MaxAge   time.Duration
	Secure   bool // Устанавливается в true для продакшена (только HTTPS)
	HTTPOnly bool
	SameSite string // "Strict", "Lax", "None"
}

// AdminConfig содержит учетные данные единственного оператора сервиса.
// PasswordHash - bcrypt-хеш; Password (только для development) хешируется
// при старте, если хеш не задан явно.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// SolverConfig содержит параметры генерации расписания по умолчанию.
// Каждый запрос может переопределить их в своем теле.
type SolverConfig struct {
	DefaultTimeLimitSeconds float64 // 0 = без ограничения
	DefaultSearchWorkers    int
	DefaultLessonsPerDay    int // желаемое число пар в день, [1, 6]
}

// validateSessionSecret выполняет валидацию сессионного секрета:
// минимальная длина, отсутствие слабых паттернов (повторы, простые
// последовательности), непустое содержимое
func validateSessionSecret(secret string) error {
	const minLength = 32

	if len(secret) < minLength {
		return fmt.Errorf("SESSION_SECRET должен быть не менее %d символов (текущая длина: %d)", minLength, len(secret))
	}
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("SESSION_SECRET не может быть только пробельными символами")
	}

	// Более 4 одинаковых символов подряд - слабый паттерн ("aaaaaaa")
	for i := 0; i+4 < len(secret); i++ {
		if secret[i] == secret[i+1] && secret[i+1] == secret[i+2] &&
			secret[i+2] == secret[i+3] && secret[i+3] == secret[i+4] {
			return fmt.Errorf("SESSION_SECRET содержит слишком много одинаковых символов подряд (более 4 одинаковых)")
		}
	}

	// Простые последовательности ("12345678", "abcdefgh")
	sequentialPatterns := []string{
		"01234567", "12345678", "23456789", "34567890",
		"abcdefgh", "bcdefghi", "cdefghij", "defghijk",
		"qwertyui", "asdfghjk",
	}
	lower := strings.ToLower(secret)
	for _, pattern := range sequentialPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("SESSION_SECRET содержит простую последовательность символов ('%s')", pattern)
		}
	}

	return nil
}

// maskSecret маскирует секрет для логирования
func maskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + "***"
}

// generateSecureSecret генерирует криптостойкий случайный секрет
func generateSecureSecret(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("некорректный DB_PORT: %w", err)
	}

	// По умолчанию 7 дней (604800 секунд)
	sessionMaxAgeSeconds, err := strconv.Atoi(getEnv("SESSION_MAX_AGE", "604800"))
	if err != nil {
		return nil, fmt.Errorf("некорректный SESSION_MAX_AGE: %w", err)
	}

	env := getEnv("ENV", "development")
	isProduction := env == "production"

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		if isProduction {
			// В production режиме обязательно требуем явно установленный секрет
			return nil, fmt.Errorf("CRITICAL SECURITY: SESSION_SECRET is required in production. " +
				"Generate with: openssl rand -base64 48. " +
				"Set unique secret for each production environment")
		}

		// В development режиме генерируем случайный секрет с предупреждением
		log.Println("[SECURITY WARNING] SESSION_SECRET not set in development. Generating temporary random secret.")
		log.Println("For consistent development sessions, set SESSION_SECRET in .env")

		generatedSecret, err := generateSecureSecret(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate SESSION_SECRET: %w", err)
		}
		sessionSecret = generatedSecret
		log.Printf("[SECURITY WARNING] Generated temporary SESSION_SECRET: %s\n", maskSecret(sessionSecret))
	}

	if err := validateSessionSecret(sessionSecret); err != nil {
		return nil, fmt.Errorf("SESSION_SECRET validation failed: %w", err)
	}

	solverTimeLimit, err := strconv.ParseFloat(getEnv("SOLVER_TIME_LIMIT_SECONDS", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("некорректный SOLVER_TIME_LIMIT_SECONDS: %w", err)
	}
	solverWorkers, err := strconv.Atoi(getEnv("SOLVER_SEARCH_WORKERS", "0"))
	if err != nil {
		return nil, fmt.Errorf("некорректный SOLVER_SEARCH_WORKERS: %w", err)
	}
	solverLessonsPerDay, err := strconv.Atoi(getEnv("SOLVER_LESSONS_PER_DAY", "4"))
	if err != nil {
		return nil, fmt.Errorf("некорректный SOLVER_LESSONS_PER_DAY: %w", err)
	}

	// Determine default SameSite based on environment
	defaultSameSite := "Lax"
	if isProduction {
		defaultSameSite = "Strict"
	}

	// Загружаем доверенные прокси-серверы (разделены запятыми)
	trustedProxies := []string{}
	if proxiesStr := getEnv("TRUSTED_PROXIES", ""); proxiesStr != "" {
		for _, proxy := range strings.Split(proxiesStr, ",") {
			if trimmed := strings.TrimSpace(proxy); trimmed != "" {
				trustedProxies = append(trustedProxies, trimmed)
			}
		}
	}
	// По умолчанию доверяем localhost для development
	if len(trustedProxies) == 0 && !isProduction {
		trustedProxies = []string{"127.0.0.1", "localhost", "::1"}
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			Name:     getEnv("DB_NAME", "timetable_service"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSL_MODE", "require"),
		},
		Server: ServerConfig{
			Port:             getEnv("SERVER_PORT", "8080"),
			Env:              env,
			ProductionDomain: getEnv("PRODUCTION_DOMAIN", ""),
			TrustedProxies:   trustedProxies,
		},
		Session: SessionConfig{
			Secret:   sessionSecret,
			MaxAge:   time.Duration(sessionMaxAgeSeconds) * time.Second,
			Secure:   isProduction, // Безопасно только в продакшене
			HTTPOnly: true,
			SameSite: getEnv("SESSION_SAME_SITE", defaultSameSite),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			Password:     getEnv("ADMIN_PASSWORD", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Solver: SolverConfig{
			DefaultTimeLimitSeconds: solverTimeLimit,
			DefaultSearchWorkers:    solverWorkers,
			DefaultLessonsPerDay:    solverLessonsPerDay,
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}

	return config, nil
}

// Validate выполняет валидацию конфигурации
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST обязателен")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME обязательно")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER обязателен")
	}

	// Database password validation - CRITICAL SECURITY CHECK
	if c.IsProduction() {
		// CRITICAL: In production, password MUST NOT be empty
		if c.Database.Password == "" {
			return fmt.Errorf("CRITICAL SECURITY: DB_PASSWORD must not be empty in production. Empty password allows unauthorized database access")
		}
	}

	// Database safety checks
	if c.IsDevelopment() {
		// In development, only allow localhost databases or Docker service name "postgres"
		if c.Database.Host != "localhost" && c.Database.Host != "127.0.0.1" && c.Database.Host != "postgres" {
			return fmt.Errorf("SAFETY: Cannot connect to remote database %s in development mode. Use localhost or Docker service name only", c.Database.Host)
		}
	}

	if c.IsProduction() {
		if c.Server.ProductionDomain == "" {
			return fmt.Errorf("PRODUCTION_DOMAIN is required in production mode")
		}
		// В production учетные данные оператора задаются только хешем
		if c.Admin.PasswordHash == "" {
			return fmt.Errorf("CRITICAL SECURITY: ADMIN_PASSWORD_HASH обязателен в production. Сгенерируйте bcrypt-хеш пароля оператора")
		}
		if c.Admin.Password != "" {
			return fmt.Errorf("CRITICAL SECURITY: ADMIN_PASSWORD (открытый пароль) запрещен в production, используйте ADMIN_PASSWORD_HASH")
		}
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT обязателен")
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET обязателен")
	}
	// SESSION_SECRET уже валидирован в Load(), здесь только проверяем MaxAge
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE должен быть больше 0")
	}

	if c.Admin.Username == "" {
		return fmt.Errorf("ADMIN_USERNAME обязателен")
	}

	if c.Solver.DefaultTimeLimitSeconds < 0 {
		return fmt.Errorf("SOLVER_TIME_LIMIT_SECONDS не может быть отрицательным")
	}
	if c.Solver.DefaultSearchWorkers < 0 {
		return fmt.Errorf("SOLVER_SEARCH_WORKERS не может быть отрицательным")
	}
	if c.Solver.DefaultLessonsPerDay < 1 || c.Solver.DefaultLessonsPerDay > 6 {
		return fmt.Errorf("SOLVER_LESSONS_PER_DAY должен быть в диапазоне [1, 6]")
	}

	return nil
}

// GetDSN возвращает строку подключения PostgreSQL
func (c *DatabaseConfig) GetDSN() string {
	// Строим DSN, пропуская пароль если он пустой (для peer auth)
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Name,
		c.SSLMode,
	)

	// Добавляем пароль только если он не пустой
	if c.Password != "" {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host,
			c.Port,
			c.User,
			c.Password,
			c.Name,
			c.SSLMode,
		)
	}

	return dsn
}

// IsProduction возвращает true, если окружение - продакшен
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsDevelopment возвращает true, если окружение - разработка
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetBaseURL возвращает базовый URL для приложения
func (c *Config) GetBaseURL() string {
	if c.IsProduction() && c.Server.ProductionDomain != "" {
		return "https://" + c.Server.ProductionDomain
	}
	return "http://localhost:" + c.Server.Port
}

// String возвращает строковое представление конфигурации с маскировкой секретов
// ВАЖНО: никогда не логирует актуальные значения секретов (пароли, хеши, ключи)
func (c *Config) String() string {
	mask := func(secret string) string {
		if secret == "" {
			return "<not set>"
		}
		return "***"
	}

	return fmt.Sprintf(
		"Config{Database:{Host:%s Port:%d Name:%s User:%s Password:%s SSLMode:%s} "+
			"Server:{Port:%s Env:%s ProductionDomain:%s} "+
			"Session:{Secret:%s MaxAge:%v Secure:%v HTTPOnly:%v SameSite:%s} "+
			"Admin:{Username:%s Password:%s PasswordHash:%s} "+
			"Solver:{TimeLimit:%v Workers:%d LessonsPerDay:%d}}",
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.User,
		mask(c.Database.Password),
		c.Database.SSLMode,
		c.Server.Port,
		c.Server.Env,
		c.Server.ProductionDomain,
		mask(c.Session.Secret),
		c.Session.MaxAge,
		c.Session.Secure,
		c.Session.HTTPOnly,
		c.Session.SameSite,
		c.Admin.Username,
		mask(c.Admin.Password),
		mask(c.Admin.PasswordHash),
		c.Solver.DefaultTimeLimitSeconds,
		c.Solver.DefaultSearchWorkers,
		c.Solver.DefaultLessonsPerDay,
	)
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
