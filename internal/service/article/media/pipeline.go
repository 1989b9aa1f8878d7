package media

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tdewolff/minify/v2"
	minsvg "github.com/tdewolff/minify/v2/svg"
	"golang.org/x/net/html"

	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models/article"
	"blogwriter/internal/service/article/sanitizer"
)

const svgMediaType = "image/svg+xml"

// Limits bound the size of an embedded image. Zero disables a limit.
type Limits struct {
	MaxBytes int
	MaxNodes int
}

// Pipeline sanitizes, optionally minifies, checks and encodes SVG markup
// into img nodes.
//
// Thread-safe for concurrent use.
type Pipeline struct {
	minifier *minify.M
	limits   Limits
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMinify enables SVG minification before encoding.
func WithMinify() Option {
	return func(p *Pipeline) {
		m := minify.New()
		m.AddFunc(svgMediaType, minsvg.Minify)
		p.minifier = m
	}
}

// NewPipeline creates an embed pipeline.
func NewPipeline(limits Limits, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{limits: limits, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed returns an img node whose url is a data reference to the sanitized
// markup.
func (p *Pipeline) Embed(markup, alt string) (article.Node, error) {
	clean, err := p.Prepare(markup)
	if err != nil {
		return article.Node{}, err
	}
	return article.Image(EncodeDataURI(clean), alt), nil
}

// Prepare runs every step except encoding.
func (p *Pipeline) Prepare(markup string) (string, error) {
	clean := sanitizer.SanitizeSVG(markup)

	if p.minifier != nil {
		minified, err := p.minifier.String(svgMediaType, clean)
		if err != nil {
			p.logger.Debug("svg minify failed, embedding unminified", "error", err)
		} else {
			// comment removal can splice fragments back into a tag
			clean = sanitizer.SanitizeSVG(minified)
		}
	}

	if strings.TrimSpace(clean) == "" {
		return "", &domain.ValidationError{Message: "image is empty after sanitization"}
	}

	root, nodes := inspect(clean)
	if root != "svg" {
		return "", &domain.ValidationError{
			Message: fmt.Sprintf("image root element must be svg, got %q", root),
		}
	}
	if p.limits.MaxBytes > 0 && len(clean) > p.limits.MaxBytes {
		return "", &domain.ValidationError{
			Message: fmt.Sprintf("image is %s, limit is %s",
				humanize.Bytes(uint64(len(clean))), humanize.Bytes(uint64(p.limits.MaxBytes))),
		}
	}
	if p.limits.MaxNodes > 0 && nodes > p.limits.MaxNodes {
		return "", &domain.ValidationError{
			Message: fmt.Sprintf("image has %s elements, limit is %s",
				humanize.Comma(int64(nodes)), humanize.Comma(int64(p.limits.MaxNodes))),
		}
	}

	p.logger.Debug("svg prepared",
		"input_bytes", len(markup),
		"output_bytes", len(clean),
		"elements", nodes,
	)
	return clean, nil
}

// inspect returns the first element name and the number of elements.
func inspect(markup string) (root string, count int) {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the scan is over
			return root, count
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if count == 0 {
				root = string(name)
			}
			count++
		}
	}
}
