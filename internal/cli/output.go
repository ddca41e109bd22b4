// Package cli provides the command-line interface for prmptr.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/greg-randall/prmptr/internal/errors"
)

// Output provides methods for structured output to a terminal.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message with a suggested action when one exists.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// TextOutput provides plain text output for terminal displays.
type TextOutput struct {
	w io.Writer
}

// NewTextOutput creates a new TextOutput.
func NewTextOutput(w io.Writer) *TextOutput {
	return &TextOutput{w: w}
}

// Success prints a success message.
func (o *TextOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, "✓ "+msg)
}

// Error prints an error message. When the error maps to a known condition,
// the suggested action is printed on a second line.
func (o *TextOutput) Error(err error) {
	message, action := errors.Actionable(err)
	_, _ = fmt.Fprintln(o.w, "✗ "+message)
	if action != "" {
		_, _ = fmt.Fprintln(o.w, "  → "+action)
	}
}

// Warning prints a warning message.
func (o *TextOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, "⚠ "+msg)
}

// Info prints an informational message.
func (o *TextOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, msg)
}

// JSON outputs a value as formatted JSON.
func (o *TextOutput) JSON(v any) error {
	return encodeJSONIndented(o.w, v)
}

// JSONOutput provides plain JSON output. Progress messages are suppressed so
// stdout carries exactly one JSON document per command.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

// Success is a no-op for JSON output.
func (o *JSONOutput) Success(_ string) {}

// Error outputs the error as JSON.
func (o *JSONOutput) Error(err error) {
	_, _ = fmt.Fprintf(o.w, "{\"error\": %q}\n", err.Error())
}

// Warning is a no-op for JSON output.
func (o *JSONOutput) Warning(_ string) {}

// Info is a no-op for JSON output.
func (o *JSONOutput) Info(_ string) {}

// JSON outputs a value as formatted JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSONIndented(o.w, v)
}

// NewOutput creates the appropriate output based on format.
func NewOutput(w io.Writer, format string) Output {
	if format == OutputJSON {
		return NewJSONOutput(w)
	}
	return NewTextOutput(w)
}

// reportedAsJSON marks err as already written to stdout as a JSON error
// document. The ErrJSONErrorOutput in the chain tells the command to silence
// cobra's own printing; err stays reachable for ExitCodeForError.
func reportedAsJSON(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, err)
}

// encodeJSONIndented encodes a value as indented JSON to the writer.
// This is a shared helper for JSON output across commands.
func encodeJSONIndented(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
