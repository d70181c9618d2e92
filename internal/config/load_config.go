package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MissingError reports an installer config file that could not be read.
type MissingError struct {
	Name string
	Err  error
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no installer config file %q found: %v", e.Name, e.Err)
}

func (e *MissingError) Unwrap() error { return e.Err }

// DefaultPath returns restore_installers.json in the directory of the running executable.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// LoadRegistry reads the installer config at path. JSON is the native format;
// .yaml and .yml files are decoded with the same schema.
// Templates are not validated here, malformed ones fail at substitution time.
func LoadRegistry(path string) (Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &MissingError{Name: filepath.Base(path), Err: err}
	}

	reg := Registry{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &reg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &reg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	}
	return reg, nil
}
