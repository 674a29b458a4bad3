package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file into the process environment.
// Variables already set take precedence. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to load env file '%s': %w", path, err)
	}

	log.Printf("Loaded environment from %s", path)

	return nil
}

// ReadEnv fills every key of m from the environment and fails on the first
// key that is unset or empty.
func ReadEnv(m map[string]string) error {
	for k := range m {
		val := os.Getenv(k)
		if val == "" {
			return fmt.Errorf("%w: %s", ErrMissingEnv, k)
		}

		m[k] = val
	}

	return nil
}

// EnvOr returns the value of key, or fallback when it is unset or empty.
func EnvOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
