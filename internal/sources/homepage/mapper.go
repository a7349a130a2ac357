package homepage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"maps"
	"slices"

	"github.com/MrSnakeDoc/shelf/internal/service"
)

// ErrEmpty is returned when a file holds no entry with an href.
var ErrEmpty = errors.New("no bookmarks with an href found")

// MapBookmarks converts a bookmarks.yaml tree into import records, in file
// order. Category names become categories and entry names become titles.
func MapBookmarks(config BookmarksConfig) ([]service.ImportBookmark, error) {
	var out []service.ImportBookmark

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, name := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[name]
					// Each bookmark has a list with a single entry
					if len(entries) == 0 || entries[0].Href == "" {
						continue
					}
					entry := entries[0]

					description := entry.Description
					if description == "" && entry.Abbr != "" && entry.Abbr != name {
						description = entry.Abbr
					}

					out = append(out, service.ImportBookmark{
						ID:          stableID(entry.Href),
						Title:       name,
						URL:         entry.Href,
						Category:    categoryName,
						Description: description,
					})
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// MapServices converts a services.yaml tree into import records. Groups
// become categories.
func MapServices(config ServicesConfig) ([]service.ImportBookmark, error) {
	var out []service.ImportBookmark

	for _, groupMap := range config {
		for _, groupName := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[groupName] {
				for _, name := range sortedKeys(serviceMap) {
					props := serviceMap[name]
					if props.Href == "" {
						continue
					}
					out = append(out, service.ImportBookmark{
						ID:          stableID(props.Href),
						Title:       name,
						URL:         props.Href,
						Category:    groupName,
						Description: props.Description,
					})
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// stableID derives the id from the URL so re-importing the same file
// yields the same ids.
func stableID(href string) string {
	hash := sha256.Sum256([]byte(href))
	return hex.EncodeToString(hash[:])[:16]
}

// sortedKeys keeps the output deterministic when a YAML list item carries
// more than one key.
func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
