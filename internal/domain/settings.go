package domain

import (
	"errors"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Allowed themes. Anything else stored reads back as DefaultTheme.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"

	DefaultTheme     = ThemeAuto
	DefaultSiteTitle = "Bookmarks"
)

// Themes lists every accepted theme value.
var Themes = []string{ThemeAuto, ThemeLight, ThemeDark}

// Settings is the singleton site configuration.
type Settings struct {
	Theme     string `json:"theme" validate:"oneof=auto light dark"`
	SiteTitle string `json:"siteTitle" validate:"required,max=60"`
	SiteIcon  string `json:"siteIcon" validate:"max=512"`
}

// SettingsPatch is a partial update. Nil fields keep their current value.
type SettingsPatch struct {
	Theme     *string `json:"theme,omitempty"`
	SiteTitle *string `json:"siteTitle,omitempty"`
	SiteIcon  *string `json:"siteIcon,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultSettings returns the settings used before anything was saved.
func DefaultSettings() Settings {
	return Settings{
		Theme:     DefaultTheme,
		SiteTitle: DefaultSiteTitle,
		SiteIcon:  "",
	}
}

// Normalize replaces an unknown theme and an empty title by their defaults.
// Used on every read.
func (s Settings) Normalize() Settings {
	if !slices.Contains(Themes, s.Theme) {
		s.Theme = DefaultTheme
	}
	if strings.TrimSpace(s.SiteTitle) == "" {
		s.SiteTitle = DefaultSiteTitle
	}
	return s
}

// Validate checks the field constraints and reports the first failure.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts the first validator failure to a ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: jsonField(fe.Field()), Message: ruleMessage(fe)}
	}
	return &ValidationError{Field: "input", Message: err.Error()}
}

// MergeSettings applies patch over current field by field and validates
// the result. Whitespace around values is dropped.
func MergeSettings(current Settings, patch SettingsPatch) (Settings, error) {
	merged := current
	if patch.Theme != nil {
		merged.Theme = strings.TrimSpace(*patch.Theme)
	}
	if patch.SiteTitle != nil {
		merged.SiteTitle = strings.TrimSpace(*patch.SiteTitle)
	}
	if patch.SiteIcon != nil {
		merged.SiteIcon = strings.TrimSpace(*patch.SiteIcon)
	}

	if err := merged.Validate(); err != nil {
		return current, err
	}
	return merged, nil
}

func jsonField(structField string) string {
	switch structField {
	case "Theme":
		return "theme"
	case "SiteTitle":
		return "siteTitle"
	case "SiteIcon":
		return "siteIcon"
	case "URL":
		return "url"
	default:
		return strings.ToLower(structField)
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed rule " + fe.Tag()
	}
}
