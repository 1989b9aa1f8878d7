package sanitizer

import (
	"strings"
	"testing"
)

func TestMarkupSanitizer(t *testing.T) {
	s := NewMarkupSanitizer()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "script content dropped",
			input:    `<p>hi<script>alert(1)</script></p>`,
			contains: []string{"<p>hi</p>"},
			excludes: []string{"script", "alert"},
		},
		{
			name:     "event handler dropped",
			input:    `<p onclick="steal()">x</p>`,
			contains: []string{"<p>x</p>"},
			excludes: []string{"onclick"},
		},
		{
			name:     "unknown element unwrapped",
			input:    `<div><p>x</p></div>`,
			contains: []string{"<p>x</p>"},
			excludes: []string{"<div"},
		},
		{
			name:     "vocabulary tags without attributes kept",
			input:    `<p><time>today</time><math>x</math></p>`,
			contains: []string{"<time>today</time>", "<math>x</math>"},
		},
		{
			name:     "serde attributes kept",
			input:    `<pre data-lang="go">x</pre><p data-content="text"></p>`,
			contains: []string{`data-lang="go"`, `data-content="text"`},
		},
		{
			name:     "bad content marker dropped",
			input:    `<p data-content="evil"></p>`,
			excludes: []string{"data-content"},
		},
		{
			name:     "non-integer start dropped",
			input:    `<ol start="x"><li>a</li></ol>`,
			contains: []string{"<ol>"},
			excludes: []string{"start"},
		},
		{
			name:     "javascript url dropped",
			input:    `<img src="javascript:alert(1)" alt="a">`,
			excludes: []string{"javascript"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Sanitize(tt.input)
			if err != nil {
				t.Fatalf("Sanitize() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize() = %q, want it to contain %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("Sanitize() = %q, should not contain %q", got, bad)
				}
			}
		})
	}
}

func TestStrictMarkupSanitizer(t *testing.T) {
	got, err := NewStrictMarkupSanitizer().Sanitize(`<p>hello <b>world</b></p>`)
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	if got != "hello world" {
		t.Errorf("Sanitize() = %q, want %q", got, "hello world")
	}
}
