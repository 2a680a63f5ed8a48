package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// LogDir enables file logging alongside stdout when set.
	LogDir string
	// Debug flags
	Debug              bool // enables debug endpoints and verbose logging
	DebugRetainBundles bool // keep compiled server bundles on disk after rendering
	// NodeModulesDir points at a host node_modules tree used to resolve the
	// browser runtime packages. Empty means the embedded runtime shims are
	// inlined instead.
	NodeModulesDir string
	// StackConfigPath overrides the embedded stack configuration when set.
	StackConfigPath string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        env,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWKSURL:            getEnv("JWKS_URL", ""),
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:        getTablePrefix(env),
		LogDir:             getEnv("LOG_DIR", ""),
		Debug:              getEnv("DEBUG", getDefaultDebug(env)) == "true",
		DebugRetainBundles: getEnv("DEBUG_RETAIN_BUNDLES", "false") == "true",
		NodeModulesDir:     getEnv("NODE_MODULES_DIR", ""),
		StackConfigPath:    getEnv("STACK_CONFIG", ""),
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
