// Package sources reads import files: shelf's own export document or a
// Homepage dashboard YAML file.
package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/sources/homepage"
)

// FormatJSON is the export document written by GET /api/admin/export.
const FormatJSON = "json"

// Formats lists every accepted format.
var Formats = []string{FormatJSON, homepage.FormatBookmarks, homepage.FormatServices}

// DetectFormat picks homepage for .yaml/.yml files and json otherwise.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return homepage.FormatBookmarks
	default:
		return FormatJSON
	}
}

// Load reads path and converts it to an import payload. An empty format
// is detected from the extension.
func Load(path, format string) (service.ImportPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.ImportPayload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if format == "" {
		format = DetectFormat(path)
	}
	return Parse(data, format)
}

// Parse converts raw file content in the given format.
func Parse(data []byte, format string) (service.ImportPayload, error) {
	switch format {
	case FormatJSON:
		var payload service.ImportPayload
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&payload); err != nil {
			return service.ImportPayload{}, fmt.Errorf("failed to parse export document: %w", err)
		}
		return payload, nil

	case homepage.FormatBookmarks:
		config, err := homepage.ParseBookmarks(data)
		if err != nil {
			return service.ImportPayload{}, err
		}
		items, err := homepage.MapBookmarks(config)
		if err != nil {
			return service.ImportPayload{}, err
		}
		return service.ImportPayload{Bookmarks: items}, nil

	case homepage.FormatServices:
		config, err := homepage.ParseServices(data)
		if err != nil {
			return service.ImportPayload{}, err
		}
		items, err := homepage.MapServices(config)
		if err != nil {
			return service.ImportPayload{}, err
		}
		return service.ImportPayload{Bookmarks: items}, nil

	default:
		return service.ImportPayload{}, fmt.Errorf("unknown format %q (allowed: %s)", format, strings.Join(Formats, ", "))
	}
}
