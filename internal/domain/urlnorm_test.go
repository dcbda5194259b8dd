package domain

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain url unchanged",
			input: "https://example.com/a",
			want:  "https://example.com/a",
		},
		{
			name:  "fragment stripped",
			input: "https://example.com/a#section-2",
			want:  "https://example.com/a",
		},
		{
			name:  "utm params stripped",
			input: "https://example.com/a?utm_source=x&utm_medium=email",
			want:  "https://example.com/a",
		},
		{
			name:  "non-tracking params kept",
			input: "https://example.com/search?q=go&utm_campaign=spring",
			want:  "https://example.com/search?q=go",
		},
		{
			name:  "click ids stripped",
			input: "https://example.com/a?gclid=123&fbclid=456&id=7",
			want:  "https://example.com/a?id=7",
		},
		{
			name:  "scheme and host lowercased",
			input: "HTTPS://Example.COM/Path",
			want:  "https://example.com/Path",
		},
		{
			name:  "query keys sorted canonically",
			input: "https://example.com/a?b=2&a=1",
			want:  "https://example.com/a?a=1&b=2",
		},
		{
			name:  "tracking param case insensitive",
			input: "https://example.com/a?UTM_Source=x",
			want:  "https://example.com/a",
		},
		{
			name:  "unparseable input returned as-is",
			input: "http://%zz",
			want:  "http://%zz",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLExtraParams(t *testing.T) {
	got := NormalizeURL("https://example.com/a?session=abc&q=1", "session")
	want := "https://example.com/a?q=1"
	if got != want {
		t.Errorf("NormalizeURL with extra params = %q, want %q", got, want)
	}
}

func TestNormalizeURLIdentity(t *testing.T) {
	// Two spellings of the same page must collapse to the same bytes.
	a := NormalizeURL("https://ex.com/a?utm_source=x")
	b := NormalizeURL("https://ex.com/a#top")
	if a != b {
		t.Errorf("expected identical normalized forms, got %q and %q", a, b)
	}
}
