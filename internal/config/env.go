package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when no env file is named explicitly.
const DefaultEnvFile = ".env"

// LoadEnv loads a dotenv file into the process environment. Variables that
// are already set keep their value. A missing file is only an error when it
// was asked for explicitly.
func LoadEnv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}
