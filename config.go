// config.go loads settings from the environment (and a .env file, when
// present). Command-line flags override these in the cobra commands.
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultModel          = "qwen2.5-coder:7b"
	defaultLogFile        = ".fixup/fixup.log"
	defaultTimeoutSeconds = 300
	defaultMaxConcurrent  = 2
	defaultContextLines   = 3
)

// Config holds runtime settings. OLLAMA_HOST is read by the ollama client
// itself and is not duplicated here.
type Config struct {
	Model          string
	LogFile        string
	JSONLogs       bool
	TimeoutSeconds int
	MaxConcurrent  int
	ContextLines   int
}

// LoadConfig reads FIXUP_* variables, falling back to defaults for unset or
// malformed values.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Model:          firstNonEmpty(strings.TrimSpace(os.Getenv("FIXUP_MODEL")), defaultModel),
		LogFile:        firstNonEmpty(strings.TrimSpace(os.Getenv("FIXUP_LOG_FILE")), defaultLogFile),
		JSONLogs:       strings.TrimSpace(os.Getenv("FIXUP_JSON_LOGS")) == "1",
		TimeoutSeconds: positiveIntEnv("FIXUP_TIMEOUT_SECONDS", defaultTimeoutSeconds),
		MaxConcurrent:  positiveIntEnv("FIXUP_MAX_CONCURRENT", defaultMaxConcurrent),
		ContextLines:   nonNegativeIntEnv("FIXUP_CONTEXT_LINES", defaultContextLines),
	}
}

func positiveIntEnv(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func nonNegativeIntEnv(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
