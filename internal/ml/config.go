package ml

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// loadBackendConfig loads a backend configuration from config/<name>.json
// when present. Missing files are fine; env fallbacks fill the gaps.
func loadBackendConfig(name string, config interface{}) error {
	path := filepath.Join("config", fmt.Sprintf("%s.json", name))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s config: %w", name, err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse %s config: %w", name, err)
	}
	log.Printf("Loaded %s configuration from %s", name, path)
	return nil
}
