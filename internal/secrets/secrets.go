package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Resolve returns the secret called name, reading it from file when a path is
// given and falling back to the inline value otherwise. The result is always
// trimmed; an empty secret is an error so a misconfigured key fails at startup
// instead of on the first API call.
func Resolve(name, inline, file string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = "secret"
	}

	if path := strings.TrimSpace(file); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", name, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, path)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(inline)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}
	return secret, nil
}
