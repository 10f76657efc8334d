package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// parseFile reads the YAML config file into a flat string map.
// Scalars of any YAML type are kept in their textual form.
func parseFile(p string) (map[string]string, error) {
	raw, err := os.ReadFile(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	data := make(map[string]string, len(doc))
	for k, v := range doc {
		switch v := v.(type) {
		case nil:
			data[k] = ""
		case map[string]any, []any:
			return nil, fmt.Errorf("%w: key %q is not a scalar", ErrInvalidFile, k)
		default:
			data[k] = fmt.Sprint(v)
		}
	}
	return data, nil
}

// Save writes a single key to the config file at p, creating the file
// and its directory when missing. Other keys are preserved; comments are not.
func Save(p, key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("%q: %w", key, ErrUnknownKey)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	out, err := yaml.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// #nosec G306 -- config file with standard permissions
	if err := os.WriteFile(p, out, 0644); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// Get reads a single value from the config file at p.
// Returns an empty string if the file or the key doesn't exist.
func Get(p, key string) (string, error) {
	data, err := List(p)
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// List returns every value stored in the config file at p.
func List(p string) (map[string]string, error) {
	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	return data, nil
}
