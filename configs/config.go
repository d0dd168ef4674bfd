// Package config reads LabSync settings from the process environment, with a
// .env file overlay for local development.
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnv sync.Once

// Config returns the value of an environment variable. The .env file, when
// present, is loaded once on first use.
func Config(key string) string {
	loadEnv.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
	return os.Getenv(key)
}

// ConfigOr returns the value of key, or fallback when it is unset.
func ConfigOr(key, fallback string) string {
	if v := Config(key); v != "" {
		return v
	}
	return fallback
}
