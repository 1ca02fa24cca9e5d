package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the bot process.
type Profile struct {
	Mode        string
	Addr        string
	Port        int
	Data        string
	InstanceURL string
	Version     string

	TelegramToken string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	OpenAIAPIKey string
	OpenAIModel  string

	// Passphrase protecting the credential file on disk.
	TokenPassphrase string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsChatEnabled returns true if the free-form chat fallback can run.
func (p *Profile) IsChatEnabled() bool {
	return p.OpenAIAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.TelegramToken = getEnvOrDefault("REMO_TELEGRAM_BOT_TOKEN", p.TelegramToken)

	p.GoogleClientID = getEnvOrDefault("REMO_GOOGLE_CLIENT_ID", p.GoogleClientID)
	p.GoogleClientSecret = getEnvOrDefault("REMO_GOOGLE_CLIENT_SECRET", p.GoogleClientSecret)
	p.GoogleRedirectURI = getEnvOrDefault("REMO_GOOGLE_REDIRECT_URI", p.GoogleRedirectURI)

	p.OpenAIAPIKey = getEnvOrDefault("REMO_OPENAI_API_KEY", p.OpenAIAPIKey)
	p.OpenAIModel = getEnvOrDefault("REMO_OPENAI_MODEL", p.OpenAIModel)

	p.TokenPassphrase = getEnvOrDefault("REMO_TOKEN_PASSPHRASE", p.TokenPassphrase)
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
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.TelegramToken == "" {
		return errors.New("telegram bot token is required")
	}
	if p.GoogleClientID == "" || p.GoogleClientSecret == "" {
		return errors.New("google oauth client credentials are required")
	}
	if p.GoogleRedirectURI == "" {
		if p.InstanceURL == "" {
			return errors.New("either a google redirect URI or an instance URL is required")
		}
		p.GoogleRedirectURI = strings.TrimRight(p.InstanceURL, "/") + "/oauth2callback"
	}
	if p.TokenPassphrase == "" {
		return errors.New("token passphrase is required to encrypt stored credentials")
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}
