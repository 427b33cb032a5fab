package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadJSON unmarshals a JSON file into target.
func LoadJSON(path string, target any) error {
	// #nosec G304 -- path comes from the operator's own flags or env.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}
