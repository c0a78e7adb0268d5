package themes

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/themescreen/internal/contracts"
)

//go:embed presets.yaml
var defaultPresets []byte

// File is the on-disk theme catalogue
type File struct {
	Themes []contracts.Theme `yaml:"themes"`
}

// Parse decodes a theme catalogue
// KnownFields(true): 알 수 없는 필드는 즉시 실패
func Parse(data []byte) ([]contracts.Theme, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode themes: %w", err)
	}

	if err := Validate(f.Themes); err != nil {
		return nil, err
	}

	return f.Themes, nil
}

// Load reads a theme catalogue from path, or the built-in presets when path is empty
func Load(path string) ([]contracts.Theme, error) {
	if path == "" {
		return Parse(defaultPresets)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes file: %w", err)
	}
	return Parse(data)
}
