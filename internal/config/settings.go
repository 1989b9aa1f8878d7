package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SettingsSchemaVersion is the settings file format written by this build.
const SettingsSchemaVersion = 1

// Settings is the per-workspace file .blog-writer/settings.json.
type Settings struct {
	SchemaVersion       int                `json:"schemaVersion"`
	DefaultAuthor       string             `json:"defaultAuthor"`
	DefaultKeywords     []string           `json:"defaultKeywords"`
	DefaultBranch       string             `json:"defaultBranch"`
	Remote              string             `json:"remote"`
	PreCommitValidate   bool               `json:"preCommitValidate"`
	MaxEmbeddedSvgBytes int                `json:"maxEmbeddedSvgBytes"`
	MaxSvgNodeCount     int                `json:"maxSvgNodeCount"`
	ImageVectorization  ImageVectorization `json:"imageVectorization"`
	Autosave            Autosave           `json:"autosave"`
}

// ImageVectorization configures raster-to-SVG conversion in the desktop
// shell. Stored for the shell; the core only embeds SVG.
type ImageVectorization struct {
	Mode      string  `json:"mode"`
	Threshold float64 `json:"threshold"`
	Colors    int     `json:"colors"`
}

// Autosave configures draft autosave in the desktop shell.
type Autosave struct {
	Enabled    bool `json:"enabled"`
	IntervalMs int  `json:"intervalMs"`
}

// DefaultSettings returns the settings written into new workspaces.
func DefaultSettings() Settings {
	return Settings{
		SchemaVersion:       SettingsSchemaVersion,
		DefaultKeywords:     []string{},
		DefaultBranch:       "main",
		PreCommitValidate:   true,
		MaxEmbeddedSvgBytes: DefaultMaxEmbeddedSVGBytes,
		MaxSvgNodeCount:     DefaultMaxSVGNodeCount,
		ImageVectorization: ImageVectorization{
			Mode:      "auto",
			Threshold: 0.6,
			Colors:    8,
		},
		Autosave: Autosave{
			Enabled:    true,
			IntervalMs: 15000,
		},
	}
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.SchemaVersion, validation.Required, validation.Max(SettingsSchemaVersion)),
		validation.Field(&s.DefaultBranch, validation.Required),
		validation.Field(&s.MaxEmbeddedSvgBytes, validation.Min(0)),
		validation.Field(&s.MaxSvgNodeCount, validation.Min(0)),
		validation.Field(&s.ImageVectorization),
		validation.Field(&s.Autosave),
	)
}

// Validate checks vectorization parameters.
func (v ImageVectorization) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Mode, validation.In("auto", "trace", "posterize", "off")),
		validation.Field(&v.Threshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&v.Colors, validation.Min(0), validation.Max(256)),
	)
}

// Validate checks the autosave interval.
func (a Autosave) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.IntervalMs, validation.When(a.Enabled, validation.Required, validation.Min(1000))),
	)
}

// LoadSettings reads a settings file. Fields missing from the file keep
// their defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return Settings{}, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes s as indented JSON.
func SaveSettings(path string, s Settings) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
