// Package format renders command output for terminals and pipes.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
)

const (
	maxJSONSize     = 10 * 1024 * 1024 // 10MB
	maxMarkdownSize = 5 * 1024 * 1024  // 5MB
)

var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Sanitize strips ANSI escape sequences. Values read from AWS pass through
// it before they reach the terminal.
func Sanitize(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

func enforceSize(content []byte, format string, maxSize int) error {
	if len(content) > maxSize {
		return fmt.Errorf("output size (%d bytes) exceeds maximum for %s format (%d bytes)", len(content), format, maxSize)
	}
	return nil
}

// Markdown renders content with glamour when color is true and returns it
// unchanged otherwise.
func Markdown(content string, color bool) (string, error) {
	if err := enforceSize([]byte(content), "markdown", maxMarkdownSize); err != nil {
		return "", err
	}
	if !color {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content, nil
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content, nil
	}
	return rendered, nil
}

// JSON renders v as indented JSON, highlighted with chroma when color is
// true. The result always ends with a newline.
func JSON(v any, color bool) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}
	if err := enforceSize(data, "json", maxJSONSize); err != nil {
		return "", err
	}
	data = append(data, '\n')
	if !color {
		return string(data), nil
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, Sanitize(string(data)), "json", "terminal256", "monokai"); err != nil {
		return string(data), nil
	}
	return buf.String(), nil
}
