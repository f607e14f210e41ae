package types

import "fmt"

const docsBaseUrl = "https://github.com/matst80/slask-widgets/blob/main/docs"

// ConfigurationError is raised at factory or widget construction time when
// required options are missing or contradictory. It is always fatal to setup
// and never recovered internally.
type ConfigurationError struct {
	Widget  string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s\n\nSee documentation: %s/%s.md", e.Widget, e.Message, docsBaseUrl, e.Widget)
}

func NewConfigurationError(widget, format string, args ...any) error {
	return &ConfigurationError{
		Widget:  widget,
		Message: fmt.Sprintf(format, args...),
	}
}
