// Package output renders CLI output in text, markdown, or JSON form.
//
// Mode auto picks text when stdout is a terminal and markdown when it is
// piped, so scripted callers get parseable output without extra flags.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode selects how a Renderer formats its output.
type OutputMode string

// Mode is a short alias for OutputMode.
type Mode = OutputMode

const (
	// ModeAuto resolves to text on a terminal and markdown otherwise.
	ModeAuto OutputMode = "auto"
	// ModeText is styled human-readable output.
	ModeText OutputMode = "text"
	// ModeMarkdown is plain markdown, suited for piping and agents.
	ModeMarkdown OutputMode = "markdown"
	// ModeJSON is machine-readable JSON.
	ModeJSON OutputMode = "json"
)

// ParseMode normalizes a mode string. Unknown values fall back to auto.
func ParseMode(s string) OutputMode {
	switch OutputMode(s) {
	case ModeText, ModeMarkdown, ModeJSON:
		return OutputMode(s)
	default:
		return ModeAuto
	}
}

// Renderer writes command output to stdout and status messages to stderr.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
// Tests use this to exercise both terminal and piped behavior.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	r := &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
	}
	r.styles = NewStyles(r.EffectiveMode() == ModeText && isTTY)
	return r
}

// EffectiveMode resolves ModeAuto against the detected TTY state.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether stdout is a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Out returns the stdout writer, for renderers that stream directly.
func (r *Renderer) Out() io.Writer {
	return r.out
}

// ErrOut returns the stderr writer.
func (r *Renderer) ErrOut() io.Writer {
	return r.errOut
}

// Styles returns the style set matching the renderer's mode.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Println writes a line to stdout.
func (r *Renderer) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Printf writes formatted output to stdout.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Header writes a section header. Text mode styles it, markdown mode
// emits a # heading.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintln(r.out, r.styles.Header.Render(text))
		return
	}
	fmt.Fprintln(r.out, FormatHeader(level, text))
}

// Success writes a success status line to stderr.
func (r *Renderer) Success(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Success.Render("✓ "+msg))
}

// Warning writes a warning status line to stderr.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
}

// Error writes an error status line to stderr.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+msg))
}

// Muted writes a low-emphasis line to stderr.
func (r *Renderer) Muted(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Muted.Render(msg))
}

// StatusLine writes one status-labeled item line to stdout. Status
// "success" gets a check mark, "failed" a cross, anything else a
// neutral dash. A non-empty detail follows in parentheses.
func (r *Renderer) StatusLine(name, status, detail string) {
	var marker string
	switch status {
	case "success":
		marker = r.styles.StatusSuccess.Render("✓")
	case "failed":
		marker = r.styles.StatusFailed.Render("✗")
	default:
		marker = "-"
	}
	line := fmt.Sprintf("  %s %s", marker, name)
	if detail != "" {
		line += " " + r.styles.Muted.Render("("+detail+")")
	}
	fmt.Fprintln(r.out, line)
}

// JSON encodes v to stdout with two-space indentation.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewSpinner creates a spinner that animates on stderr while a long
// operation runs. Callers should only show it in text mode.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return newSpinner(r.errOut, msg, r.styles, r.isTTY)
}
