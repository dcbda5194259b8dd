package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of the triage rules yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new rules loader. An empty path means no file is
// configured and defaults apply.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the rules file. A missing or unconfigured file is
// not an error: it yields a nil config, which maps to the defaults.
func (l *Loader) Load() (*FileConfig, error) {
	if l.filePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse rules yaml: %w", err)
	}

	return &config, nil
}
