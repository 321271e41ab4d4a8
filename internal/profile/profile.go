package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// LLM configuration (OpenAI-compatible protocol). All providers use the
	// same config; only the base URL and model differ.
	LLMProvider      string // openai, deepseek, openrouter, ollama, or any compatible
	LLMAPIKey        string
	LLMBaseURL       string // optional, has a default per provider
	LLMModel         string
	LLMTimeout       int   // request timeout in seconds (default: 60)
	LLMMaxConcurrent int64 // in-flight LLM call cap (default: 8)

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Other configurations
	Mode          string // dev, prod
	Addr          string
	Port          int
	Data          string
	Driver        string // sqlite, postgres
	DSN           string
	Version       string
	InstanceURL   string // public URL, used for the OAuth redirect
	SessionSecret string // HMAC key for session cookies
	Timezone      string // IANA name used to resolve relative dates
}

// Provider default configurations for the LLM.
// Used when LLM_BASE_URL / LLM_MODEL are not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled returns true if an LLM API key is configured (ollama needs
// none, so a local provider counts as enabled too).
func (p *Profile) IsLLMEnabled() bool {
	return p.LLMAPIKey != "" || p.LLMProvider == "ollama"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("VOCALAGENT_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("VOCALAGENT_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("VOCALAGENT_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("VOCALAGENT_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("VOCALAGENT_LLM_TIMEOUT_SECONDS", 60)
	p.LLMMaxConcurrent = int64(getEnvOrDefaultInt("VOCALAGENT_LLM_MAX_CONCURRENT", 8))

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("unknown LLM provider, treating as generic OpenAI-compatible", "provider", p.LLMProvider)
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	p.GoogleClientID = getEnvOrDefault("VOCALAGENT_GOOGLE_CLIENT_ID", "")
	p.GoogleClientSecret = getEnvOrDefault("VOCALAGENT_GOOGLE_CLIENT_SECRET", "")
	p.SessionSecret = getEnvOrDefault("VOCALAGENT_SESSION_SECRET", "")
	p.Timezone = getEnvOrDefault("VOCALAGENT_TIMEZONE", "UTC")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "vocalagent")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/vocalagent"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("vocalagent_%s.db", p.Mode))
	}
	if p.Driver != "sqlite" && p.DSN == "" {
		return errors.Errorf("dsn is required for driver %q", p.Driver)
	}

	if p.SessionSecret == "" {
		if p.Mode == "prod" {
			return errors.New("session secret is required in prod mode")
		}
		p.SessionSecret = "vocalagent-dev-secret"
	}

	if p.Timezone == "" {
		p.Timezone = "UTC"
	}

	return nil
}
