package config

import "fmt"

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "light", "dark" or empty for terminal detection
	Theme string `yaml:"theme,omitempty"`

	// Greeting replaces the seeded assistant message when set
	Greeting string `yaml:"greeting,omitempty"`

	// RenderMarkdown renders assistant replies through glamour instead of
	// showing them verbatim
	RenderMarkdown bool `yaml:"render_markdown"`

	// MarkdownWordWrap is the reply wrap width (0 = follow the viewport)
	MarkdownWordWrap int `yaml:"markdown_word_wrap,omitempty"`

	// MaxInputChars caps the input buffer
	MaxInputChars int `yaml:"max_input_chars"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		MaxInputChars: 4096,
	}
}

// Validate checks the UI settings.
func (u UIConfig) Validate() error {
	switch u.Theme {
	case "", "light", "dark":
	default:
		return fmt.Errorf("invalid ui theme %q (valid: light, dark)", u.Theme)
	}
	if u.MarkdownWordWrap < 0 {
		return fmt.Errorf("markdown_word_wrap must not be negative")
	}
	return nil
}
