package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	RedisAddr     string
	RedisPort     string
	RedisPassword string

	// Pricing and entitlement
	SessionPrice            int64 // Toman per 20-minute session
	ActivationBufferMinutes int   // extra minutes added to a freshly started session
	DiscountCodes           map[string]int

	// Auth / OTP
	OTPTTLMinutes       int
	OTPResendSeconds    int
	OTPOverrideCode     string // debug bypass, must stay empty in production
	AuthSessionTTLHours int
	SessionCookieName   string
	SessionCookieSecure bool

	// Upstreams
	MetisBaseURL     string
	MetisAPIKey      string
	MetisBotID       string
	GreetingMessage  string
	KavenegarAPIKey  string
	KavenegarOTPTmpl string
	STTBaseURL       string
	STTAPIKey        string

	// Payment gateway
	ZarinpalMerchantID string
	ZarinpalAPIURL     string
	ZarinpalPayURL     string
	PaymentCallbackURL string
	FrontendURL        string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		RedisAddr:     os.Getenv("REDIS_HOST"),
		RedisPort:     os.Getenv("REDIS_PORT"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SessionPrice:            getEnvAsInt64("SESSION_PRICE", 39000),
		ActivationBufferMinutes: getEnvAsInt("SESSION_ACTIVATION_BUFFER_MINUTES", 2),
		DiscountCodes:           getEnvAsIntMap("DISCOUNT_CODES", map[string]int{"hamrah": 25}),

		OTPTTLMinutes:       getEnvAsInt("OTP_TTL_MINUTES", 20),
		OTPResendSeconds:    getEnvAsInt("OTP_RESEND_SECONDS", 60),
		OTPOverrideCode:     os.Getenv("OTP_OVERRIDE_CODE"),
		AuthSessionTTLHours: getEnvAsInt("AUTH_SESSION_TTL_HOURS", 24*30),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "delyar_session"),
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", true),

		MetisBaseURL:     getEnv("METIS_BASE_URL", "https://api.metisai.ir/api/v1"),
		MetisAPIKey:      os.Getenv("METIS_API_KEY"),
		MetisBotID:       os.Getenv("METIS_BOT_ID"),
		GreetingMessage:  os.Getenv("GREETING_MESSAGE"),
		KavenegarAPIKey:  os.Getenv("KAVENEGAR_API_KEY"),
		KavenegarOTPTmpl: getEnv("KAVENEGAR_OTP_TEMPLATE", "delyar-otp"),
		STTBaseURL:       os.Getenv("STT_BASE_URL"),
		STTAPIKey:        os.Getenv("STT_API_KEY"),

		ZarinpalMerchantID: os.Getenv("ZARINPAL_MERCHANT_ID"),
		ZarinpalAPIURL:     getEnv("ZARINPAL_API_URL", "https://api.zarinpal.com/pg/v4"),
		ZarinpalPayURL:     getEnv("ZARINPAL_PAY_URL", "https://www.zarinpal.com/pg/StartPay"),
		PaymentCallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsIntMap parses a JSON object of string -> int, e.g. {"hamrah":25}.
func getEnvAsIntMap(key string, defaultValue map[string]int) map[string]int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var m map[string]int
		if err := json.Unmarshal([]byte(valueStr), &m); err == nil {
			return m
		}
	}
	return defaultValue
}
