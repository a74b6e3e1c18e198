package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environment holds the CI inputs read from process environment variables.
type Environment struct {
	ChangedFiles string `env:"CHANGED_FILES"`
	Repository   string `env:"GITHUB_REPOSITORY"`
}

// LoadEnvironment reads the CI inputs. When dotenvPath names an existing file it
// is loaded first; variables already present in the environment win. A missing
// dotenv file is not an error, and absent variables yield empty values.
func LoadEnvironment(dotenvPath string) (Environment, error) {
	if path := strings.TrimSpace(dotenvPath); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Environment{}, fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	var env Environment
	if err := cleanenv.ReadEnv(&env); err != nil {
		return Environment{}, fmt.Errorf("read env: %w", err)
	}
	env.Repository = strings.TrimSpace(env.Repository)
	return env, nil
}

// ChangedFileList splits CHANGED_FILES on newlines, trimming each entry.
// Empty entries are kept so callers can account for them.
func (e Environment) ChangedFileList() []string {
	if e.ChangedFiles == "" {
		return nil
	}
	lines := strings.Split(e.ChangedFiles, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
