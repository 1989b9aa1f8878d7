package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Local API authentication
	APISecret string // HMAC key for bearer tokens; generated at startup when empty
	TokenFile string // Where the startup token is written for the desktop shell
	// Logging
	LogDir      string
	LogMaxFiles int
	// Editing
	PreferencesPath string // YAML file with recently opened workspaces
	StrictMarkup    bool   // Run editor markup through the vocabulary policy
	MinifySVG       bool   // Minify embedded SVG before encoding
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	home := userConfigDir()

	return &Config{
		Port:            getEnv("PORT", "8787"),
		Environment:     env,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:5173,wails://wails"),
		APISecret:       getEnv("API_SECRET", ""),
		TokenFile:       getEnv("TOKEN_FILE", filepath.Join(home, "session.token")),
		LogDir:          getEnv("LOG_DIR", filepath.Join(home, "logs")),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
		PreferencesPath: getEnv("PREFERENCES_PATH", DefaultPreferencesPath()),
		StrictMarkup:    getEnv("STRICT_MARKUP", "true") == "true",
		MinifySVG:       getEnv("MINIFY_SVG", "true") == "true",
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// userConfigDir is ~/.blog-writer, or the working directory when the home
// directory cannot be determined.
func userConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blog-writer"
	}
	return filepath.Join(home, ".blog-writer")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
