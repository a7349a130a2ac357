package domain

import (
	"cmp"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Bookmark is a single saved link.
//
// A Bookmark is uniquely identified by its ID. Every backend stores the
// same fields, so the ordering rules below hold whatever storage is active.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is an opaque unique identifier assigned on creation.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// Title is the display name. Never empty.
	Title string `json:"title"`

	// URL always carries a scheme.
	// Example: https://example.com
	URL string `json:"url"`

	// Category is the normalized grouping key ("" = uncategorized).
	Category string `json:"category,omitempty"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Visible controls whether the public list shows the bookmark.
	Visible bool `json:"visible"`

	// ─────────────────────────────
	// Ordering
	// ─────────────────────────────

	// Order is the position in the global list. Dense after any reorder,
	// possibly sparse after deletes.
	Order int `json:"order"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt breaks ties between equal Order values.
	CreatedAt time.Time `json:"createdAt,omitzero"`

	// UpdatedAt is refreshed on any mutation.
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// BookmarkInput carries the mutable fields of a create or update request.
type BookmarkInput struct {
	Title       string `json:"title" validate:"required"`
	URL         string `json:"url" validate:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Visible     *bool  `json:"visible"`
}

// Sanitize trims every field, normalizes the category and the URL scheme
// and validates the required fields.
func (in BookmarkInput) Sanitize() (BookmarkInput, error) {
	out := BookmarkInput{
		Title:       strings.TrimSpace(in.Title),
		URL:         strings.TrimSpace(in.URL),
		Category:    NormalizeCategory(in.Category),
		Description: strings.TrimSpace(in.Description),
		Visible:     in.Visible,
	}

	if err := validate.Struct(out); err != nil {
		return out, validationError(err)
	}
	out.URL = NormalizeURL(out.URL)
	return out, nil
}

// IsVisible returns the requested visibility, defaulting to true.
func (in BookmarkInput) IsVisible() bool {
	if in.Visible == nil {
		return true
	}
	return *in.Visible
}

// NormalizeURL prefixes https:// when raw has no scheme.
// Example: "example.com" -> "https://example.com"
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && strings.Contains(raw, "://") {
		return raw
	}
	if strings.HasPrefix(raw, "mailto:") {
		return raw
	}
	return "https://" + strings.TrimPrefix(raw, "//")
}

// NormalizeCategory maps a raw category to its grouping key.
// Empty and whitespace-only values all become Uncategorized.
func NormalizeCategory(raw string) string {
	category := strings.TrimSpace(raw)
	if category == "" {
		return Uncategorized
	}
	return category
}

// Uncategorized is the key shared by bookmarks without a category.
const Uncategorized = ""

// SortCanonical sorts bookmarks in display order: order ascending, then
// creation time ascending. The sort is stable for full ties.
func SortCanonical(list []Bookmark) {
	slices.SortStableFunc(list, func(a, b Bookmark) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// NextOrder returns the order value that appends after every bookmark.
func NextOrder(list []Bookmark) int {
	if len(list) == 0 {
		return 0
	}
	highest := list[0].Order
	for _, b := range list[1:] {
		highest = max(highest, b.Order)
	}
	return highest + 1
}

// IndexOf returns the position of the bookmark with id, or -1.
func IndexOf(list []Bookmark, id string) int {
	return slices.IndexFunc(list, func(b Bookmark) bool { return b.ID == id })
}
