package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config armazena todas as configurações do Stockroom.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados: "postgres" (pgx) ou "sqlite"
	DBDriver    string
	DatabaseURL string
	SQLitePath  string
	DBTimeout   time.Duration

	// Cache, rate limit e eventos (Redis). REDIS_ADDR vazio desliga o Redis.
	RedisAddr string
	CacheTTL  time.Duration

	// Segurança (JWT + senha administrativa)
	JWTSecretKey      string
	TokenExpiry       time.Duration
	AdminPasswordHash string

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Notificações
	TelegramToken  string
	TelegramChatID int64
	NotifyChannel  string
	NotifyTimeout  time.Duration

	MetricsEnabled bool
}

// defaults lista o valor padrão de cada chave. A chave é também o nome da variável de ambiente.
var defaults = map[string]interface{}{
	"PORT":                    "8080",
	"ENV":                     "development",
	"LOG_LEVEL":               "info",
	"DB_DRIVER":               "postgres",
	"DATABASE_URL":            "",
	"SQLITE_PATH":             "stockroom.db",
	"DB_TIMEOUT_SEC":          5,
	"REDIS_ADDR":              "localhost:6379",
	"CACHE_TTL_SEC":           60,
	"JWT_SECRET_KEY":          "",
	"JWT_EXPIRY_MIN":          60,
	"ADMIN_PASSWORD_HASH":     "",
	"RATE_LIMIT_MAX_REQUESTS": 100,
	"RATE_LIMIT_PERIOD_MIN":   1,
	"TELEGRAM_TOKEN":          "",
	"TELEGRAM_CHAT_ID":        0,
	"NOTIFY_CHANNEL":          "stockroom.events",
	"NOTIFY_TIMEOUT_SEC":      10,
	"METRICS_ENABLED":         true,
}

// LoadConfig lê os valores padrão, o arquivo opcional de CONFIG_FILE e as variáveis de ambiente,
// nessa ordem de precedência crescente.
func LoadConfig() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("falha ao ler o arquivo de configuração %s: %w", path, err)
		}
	}

	return &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL: v.GetString("DATABASE_URL"),
		SQLitePath:  v.GetString("SQLITE_PATH"),
		DBTimeout:   time.Duration(v.GetInt("DB_TIMEOUT_SEC")) * time.Second,

		RedisAddr: v.GetString("REDIS_ADDR"),
		CacheTTL:  time.Duration(v.GetInt("CACHE_TTL_SEC")) * time.Second,

		JWTSecretKey:      v.GetString("JWT_SECRET_KEY"),
		TokenExpiry:       time.Duration(v.GetInt("JWT_EXPIRY_MIN")) * time.Minute,
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),

		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitPeriod:      time.Duration(v.GetInt("RATE_LIMIT_PERIOD_MIN")) * time.Minute,

		TelegramToken:  v.GetString("TELEGRAM_TOKEN"),
		TelegramChatID: v.GetInt64("TELEGRAM_CHAT_ID"),
		NotifyChannel:  v.GetString("NOTIFY_CHANNEL"),
		NotifyTimeout:  time.Duration(v.GetInt("NOTIFY_TIMEOUT_SEC")) * time.Second,

		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}, nil
}

// Validate aponta todas as configurações obrigatórias ausentes ou inválidas de uma vez.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL deve ser definida quando DB_DRIVER=postgres"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH deve ser definida quando DB_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER inválido: %q (use postgres ou sqlite)", c.DBDriver))
	}

	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY deve ser definida"))
	}
	if c.DBTimeout <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT_SEC deve ser positivo"))
	}
	if c.TokenExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_MIN deve ser positivo"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT_SEC deve ser positivo"))
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID deve ser definido junto com TELEGRAM_TOKEN"))
	}

	return errors.Join(errs...)
}
