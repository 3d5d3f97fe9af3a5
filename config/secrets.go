package config

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// ErrMissingAPIKey is returned when neither the environment nor the
// secrets file provides a model credential.
var ErrMissingAPIKey = errors.New(apiKeyEnv + " not found in environment or secrets file")

// ResolveAPIKey returns the model credential from the environment, falling
// back to the TOML secrets file at secretsPath.
func ResolveAPIKey(secretsPath string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(apiKeyEnv)); key != "" {
		return key, nil
	}

	if secretsPath == "" {
		return "", ErrMissingAPIKey
	}

	secrets, err := loadSecrets(secretsPath)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return "", ErrMissingAPIKey
		}
		return "", err
	}

	if key, ok := secrets[apiKeyEnv].(string); ok && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), nil
	}

	return "", ErrMissingAPIKey
}

func loadSecrets(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read secrets file %s", path)
	}

	secrets := make(map[string]any)
	if err := toml.Unmarshal(data, &secrets); err != nil {
		return nil, errors.Wrapf(err, "parse secrets file %s", path)
	}

	return secrets, nil
}
