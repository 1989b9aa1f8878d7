// Package export renders articles as Markdown files with front matter.
package export

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models/article"
	"blogwriter/internal/service/article/markup"
)

// Format selects the front matter syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat maps a query value to a Format. Empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatYAML:
		return FormatYAML, nil
	case FormatTOML:
		return FormatTOML, nil
	}
	return "", &domain.ValidationError{Message: fmt.Sprintf("unsupported front matter format %q (use yaml or toml)", s)}
}

// frontMatter uses static site generator key names.
type frontMatter struct {
	Title       string   `yaml:"title" toml:"title"`
	Author      string   `yaml:"author,omitempty" toml:"author,omitempty"`
	Description string   `yaml:"description,omitempty" toml:"description,omitempty"`
	Date        string   `yaml:"date,omitempty" toml:"date,omitempty"`
	Lastmod     string   `yaml:"lastmod,omitempty" toml:"lastmod,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty" toml:"keywords,omitempty"`
}

func newFrontMatter(m article.Metadata) frontMatter {
	return frontMatter{
		Title:       m.Title,
		Author:      m.Author,
		Description: m.Description,
		Date:        m.PublicationDate,
		Lastmod:     m.UpdatedDate,
		Keywords:    m.Keywords,
	}
}

// Exporter converts articles to Markdown.
//
// Thread-safe for concurrent use.
type Exporter struct {
	engine    *markup.Engine
	converter *md.Converter
}

// NewExporter creates an Exporter that renders documents with engine.
func NewExporter(engine *markup.Engine) *Exporter {
	return &Exporter{
		engine:    engine,
		converter: md.NewConverter("", true, nil),
	}
}

// Markdown renders a as front matter followed by the Markdown body.
func (e *Exporter) Markdown(a *article.Article, format Format) ([]byte, error) {
	html, err := e.engine.Serialize(a.Document)
	if err != nil {
		return nil, err
	}
	body, err := e.converter.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("failed to convert article to markdown: %w", err)
	}
	return compose(newFrontMatter(a.Metadata), body, format)
}

func compose(fm frontMatter, body string, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(fm); err != nil {
			return nil, fmt.Errorf("encode yaml front matter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml front matter: %w", err)
		}
		buf.WriteString("---\n")
	case FormatTOML:
		buf.WriteString("+++\n")
		if err := toml.NewEncoder(&buf).Encode(fm); err != nil {
			return nil, fmt.Errorf("encode toml front matter: %w", err)
		}
		buf.WriteString("+++\n")
	default:
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unsupported front matter format %q", format)}
	}

	if body = strings.TrimSpace(body); body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// SplitFrontMatter separates a file produced by Markdown into its
// metadata and body.
func SplitFrontMatter(content []byte) (article.Metadata, string, error) {
	str := string(content)
	var (
		fm    frontMatter
		parts []string
		err   error
	)
	switch {
	case strings.HasPrefix(str, "---\n"):
		parts = strings.SplitN(str, "---\n", 3)
		if len(parts) == 3 {
			err = yaml.Unmarshal([]byte(parts[1]), &fm)
		}
	case strings.HasPrefix(str, "+++\n"):
		parts = strings.SplitN(str, "+++\n", 3)
		if len(parts) == 3 {
			err = toml.Unmarshal([]byte(parts[1]), &fm)
		}
	default:
		return article.Metadata{}, "", fmt.Errorf("missing front matter delimiter")
	}
	if len(parts) != 3 {
		return article.Metadata{}, "", fmt.Errorf("missing closing front matter delimiter")
	}
	if err != nil {
		return article.Metadata{}, "", fmt.Errorf("failed to parse front matter: %w", err)
	}
	return article.Metadata{
		Title:           fm.Title,
		Author:          fm.Author,
		Description:     fm.Description,
		PublicationDate: fm.Date,
		UpdatedDate:     fm.Lastmod,
		Keywords:        fm.Keywords,
	}, strings.TrimSpace(parts[2]), nil
}
