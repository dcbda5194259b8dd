package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderMissingFile(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "unconfigured", path: ""},
		{name: "nonexistent", path: filepath.Join(t.TempDir(), "nope.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := NewLoader(tt.path).Load()
			if err != nil {
				t.Fatalf("Load() error = %v, want nil", err)
			}
			if config != nil {
				t.Errorf("Load() = %+v, want nil config", config)
			}
		})
	}
}

func TestLoaderParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
tracking_params:
  - session_id
internal_prefixes:
  - "vivaldi://"
editor_prefix: "http://localhost:9999/edit"
editor_param: "item"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config == nil {
		t.Fatal("Load() returned nil config for existing file")
	}
	if len(config.TrackingParams) != 1 || config.TrackingParams[0] != "session_id" {
		t.Errorf("TrackingParams = %v", config.TrackingParams)
	}
	if config.EditorPrefix != "http://localhost:9999/edit" {
		t.Errorf("EditorPrefix = %v", config.EditorPrefix)
	}
}

func TestLoaderRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte("tracking_params: {oops"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Load() should fail on malformed yaml")
	}
}

func TestMapDefaults(t *testing.T) {
	r := Map(nil)

	if !r.IsInternalURL("chrome://settings") {
		t.Error("chrome:// pages must be internal")
	}
	if !r.IsInternalURL("") {
		t.Error("empty URL must be internal")
	}
	if r.IsInternalURL("https://example.com/a") {
		t.Error("ordinary pages must not be internal")
	}
	if !r.IsInternalURL(defaultEditorPrefix + "?note=n1") {
		t.Error("editor pages must be internal (re-triaged, not captured)")
	}
}

func TestEditorItemID(t *testing.T) {
	r := Map(nil)

	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{
			name:   "editor url with note id",
			url:    defaultEditorPrefix + "?note=abc-123",
			wantID: "abc-123",
			wantOK: true,
		},
		{
			name:   "editor url without id",
			url:    defaultEditorPrefix,
			wantOK: false,
		},
		{
			name:   "ordinary url",
			url:    "https://example.com/editor?note=abc",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := r.EditorItemID(tt.url)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("EditorItemID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestProviderSwap(t *testing.T) {
	p := NewProvider(nil)
	before := p.Current()

	custom := Map(&FileConfig{EditorParam: "item"})
	p.Swap(custom)

	if p.Current() == before {
		t.Error("Swap() did not replace the active rule set")
	}
	p.Swap(nil)
	if p.Current() != custom {
		t.Error("Swap(nil) must keep the active rule set")
	}
}
