package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Format is a file encoding for record groups.
type Format string

// Supported file formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension. Unknown extensions are YAML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Groups maps group names to their record arrays, as stored in a file.
type Groups map[string][]types.Record

// DecodeGroups parses data in format f. Empty input yields no groups.
func DecodeGroups(f Format, data []byte) (Groups, error) {
	groups := Groups{}
	if len(bytes.TrimSpace(data)) == 0 {
		return groups, nil
	}

	var err error
	switch f {
	case FormatTOML:
		err = toml.Unmarshal(data, &groups)
	case FormatJSON:
		err = json.Unmarshal(data, &groups)
	default:
		err = yaml.Unmarshal(data, &groups)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s records: %w", f, err)
	}
	return groups, nil
}

// EncodeGroups renders groups in format f.
func EncodeGroups(f Format, groups Groups) ([]byte, error) {
	switch f {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(groups); err != nil {
			return nil, fmt.Errorf("encoding toml records: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(groups, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json records: %w", err)
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(groups); err != nil {
			return nil, fmt.Errorf("encoding yaml records: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml records: %w", err)
		}
		return buf.Bytes(), nil
	}
}
