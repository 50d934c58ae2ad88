package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	LLM      LLMConfig
	Render   RenderConfig
	Defaults DefaultsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
}

// SessionConfig bounds the transient per-upload workspace
type SessionConfig struct {
	WorkDir string
	TTL     time.Duration
}

// LLMConfig holds completion-provider configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	// InputMode selects the representation sent to the model:
	// "transcript" (normalized text) or "page" (rasterized first page).
	InputMode string
}

// RenderConfig holds the external rasterizer / CAD renderer endpoints
type RenderConfig struct {
	RasterizerURL  string
	CADRendererURL string
	Timeout        time.Duration
	MaxParallel    int
}

// DefaultsConfig is the boilerplate the prompt instructs the model to keep
// verbatim unless the sheet contradicts it.
type DefaultsConfig struct {
	SupplierName       string
	SupplierContact    string
	SupplierTel        string
	SupplierEmail      string
	SupplierAddress    string
	PaymentTerms       string
	AcceptanceStandard string
	Validity           string
	Notice             string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Session: SessionConfig{
			WorkDir: getEnv("WORK_DIR", os.TempDir()),
			TTL:     getEnvAsDuration("SESSION_TTL", 10*time.Minute),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 120*time.Second),
			InputMode:   getEnv("INPUT_MODE", "transcript"),
		},
		Render: RenderConfig{
			RasterizerURL:  getEnv("RASTERIZER_URL", ""),
			CADRendererURL: getEnv("CAD_RENDERER_URL", ""),
			Timeout:        getEnvAsDuration("RENDER_TIMEOUT", 60*time.Second),
			MaxParallel:    getEnvAsInt("RENDER_MAX_PARALLEL", 4),
		},
		Defaults: DefaultsConfig{
			SupplierName:       getEnv("SUPPLIER_NAME", "杭州宙斯创造科技有限公司"),
			SupplierContact:    getEnv("SUPPLIER_CONTACT", "销售部"),
			SupplierTel:        getEnv("SUPPLIER_TEL", ""),
			SupplierEmail:      getEnv("SUPPLIER_EMAIL", ""),
			SupplierAddress:    getEnv("SUPPLIER_ADDRESS", ""),
			PaymentTerms:       getEnv("DEFAULT_PAYMENT_TERMS", "月结30天"),
			AcceptanceStandard: getEnv("DEFAULT_ACCEPTANCE", "按图纸及双方确认的样品验收"),
			Validity:           getEnv("DEFAULT_VALIDITY", "自报价之日起30天内有效"),
			Notice:             getEnv("DEFAULT_NOTICE", "含税含运费，交期自确认订单之日起计算。"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate fails closed before any file is touched.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.InputMode != "transcript" && c.LLM.InputMode != "page" {
		return NewAppError("CONFIG_ERROR", "INPUT_MODE must be 'transcript' or 'page'", ErrInvalidInput)
	}
	if c.LLM.InputMode == "page" && c.Render.RasterizerURL == "" {
		return NewAppError("CONFIG_ERROR", "RASTERIZER_URL is required in page mode", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Session.TTL <= 0 {
		return NewAppError("CONFIG_ERROR", "SESSION_TTL must be positive", ErrInvalidInput)
	}
	return nil
}
