package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spoolworks/spindle/pkg/domain"
)

// Format identifies a storyworld document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Parse decodes and validates a storyworld document.
func Parse(data []byte, format Format) (*domain.Storyworld, error) {
	var sw domain.Storyworld
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &sw); err != nil {
			return nil, fmt.Errorf("failed to decode storyworld json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &sw); err != nil {
			return nil, fmt.Errorf("failed to decode storyworld yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported storyworld format: %s", format)
	}

	if err := Validate(&sw); err != nil {
		return nil, err
	}
	return &sw, nil
}

// LoadFile reads and parses a storyworld from disk, picking the format from
// the file extension (.json, .yaml, .yml).
func LoadFile(path string) (*domain.Storyworld, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storyworld file: %w", err)
	}

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json", "":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported storyworld file extension: %s", filepath.Ext(path))
	}

	return Parse(data, format)
}

// FileLoader implements ports.StoryworldLoader over the local filesystem.
// The ref passed to Load is resolved relative to BasePath.
type FileLoader struct {
	BasePath string
}

// NewFileLoader creates a loader rooted at basePath ("." when empty).
func NewFileLoader(basePath string) *FileLoader {
	if basePath == "" {
		basePath = "."
	}
	return &FileLoader{BasePath: basePath}
}

// Load resolves ref against the base path and parses the file.
func (l *FileLoader) Load(ctx context.Context, ref string) (*domain.Storyworld, error) {
	return LoadFile(filepath.Join(l.BasePath, ref))
}
