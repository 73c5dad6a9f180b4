package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads a .env file from the working directory or its parent, once.
// It stays silent because logging is not configured yet when it runs.
func LoadEnv() {
	envOnce.Do(func() {
		for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(candidate); err == nil {
				_ = godotenv.Load(candidate)
				return
			}
		}
	})
}
