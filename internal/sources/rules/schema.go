package rules

// FileConfig represents the top-level structure of the triage rules yaml.
// Every field is optional; omitted fields fall back to built-in defaults.
type FileConfig struct {
	// TrackingParams are extra query parameter names stripped during URL
	// normalization, on top of the built-in campaign/click-id set.
	TrackingParams []string `yaml:"tracking_params,omitempty"`

	// InternalPrefixes are URL prefixes that must never be captured
	// (browser-internal pages, the daemon's own UI, ...).
	InternalPrefixes []string `yaml:"internal_prefixes,omitempty"`

	// EditorPrefix overrides the URL prefix identifying note editor tabs.
	EditorPrefix string `yaml:"editor_prefix,omitempty"`

	// EditorParam overrides the query parameter carrying the note item id.
	EditorParam string `yaml:"editor_param,omitempty"`
}
