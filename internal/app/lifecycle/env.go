package lifecycle

import (
	"fmt"

	"github.com/joho/godotenv"

	"fastpull/internal/app/errors"
)

// LoadEnvFile reads KEY=VALUE pairs passed to the unit's environment
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %w", errors.ErrFailedToReadEnvFile, path, err)
	}

	return env, nil
}
