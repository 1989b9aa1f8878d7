// Package media turns SVG markup into inline data references for img nodes.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// SVGDataURIPrefix starts every reference produced by EncodeDataURI.
const SVGDataURIPrefix = "data:image/svg+xml;base64,"

// ErrNotSVGDataURI is returned by DecodeDataURI for other references.
var ErrNotSVGDataURI = errors.New("not an svg data uri")

// EncodeDataURI encodes svg as a base64 data URI. It does not sanitize;
// callers must run sanitizer.SanitizeSVG first.
func EncodeDataURI(svg string) string {
	return SVGDataURIPrefix + base64.StdEncoding.EncodeToString([]byte(svg))
}

// DecodeDataURI returns the markup embedded by EncodeDataURI.
func DecodeDataURI(uri string) (string, error) {
	payload, ok := strings.CutPrefix(uri, SVGDataURIPrefix)
	if !ok {
		return "", ErrNotSVGDataURI
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode svg payload: %w", err)
	}
	return string(b), nil
}
