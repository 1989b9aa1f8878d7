package config

import "time"

const (
	// MaxMarkupDepth is the deepest element nesting Deserialize accepts.
	// Editor output rarely exceeds a dozen levels; anything near this
	// limit is pasted or generated content.
	MaxMarkupDepth = 256

	// MaxDocumentDepth is the deepest node nesting the validator accepts.
	// Matches MaxMarkupDepth so every valid document can be rendered.
	MaxDocumentDepth = MaxMarkupDepth

	// MaxRequestBytes caps API request bodies. Articles embed images as
	// data URIs, so this must exceed DefaultMaxEmbeddedSVGBytes.
	MaxRequestBytes = 32 << 20

	// DefaultMaxEmbeddedSVGBytes is the per-image limit used when a
	// workspace settings file does not set one.
	DefaultMaxEmbeddedSVGBytes = 10 << 20

	// DefaultMaxSVGNodeCount is the per-image element limit used when a
	// workspace settings file does not set one.
	DefaultMaxSVGNodeCount = 100000

	// MaxRecentWorkspaces is the length of the recently opened list.
	MaxRecentWorkspaces = 5
)

// TokenLifetime is how long a local API token stays valid. A new token is
// issued on every server start.
const TokenLifetime = 7 * 24 * time.Hour
