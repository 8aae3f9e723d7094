package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/docsync"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output renders command results as styled text for people or as one JSON
// object per command for agents.
type Output struct {
	w       io.Writer
	json    bool
	written bool

	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

// NewOutput returns an Output writing to w in the given format.
func NewOutput(w io.Writer, format string) *Output {
	return &Output{
		w:       w,
		json:    format == FormatJSON,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89B4FA")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// JSON reports whether results are rendered as JSON.
func (o *Output) JSON() bool {
	return o.json
}

// Written reports whether anything has been rendered.
func (o *Output) Written() bool {
	return o.written
}

// Encode writes v as indented JSON.
func (o *Output) Encode(v any) error {
	o.written = true
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Title writes a bold heading line.
func (o *Output) Title(format string, args ...any) {
	o.line(o.title, format, args...)
}

// Line writes an unstyled line.
func (o *Output) Line(format string, args ...any) {
	o.written = true
	fmt.Fprintf(o.w, format+"\n", args...)
}

// Muted writes a dimmed line.
func (o *Output) Muted(format string, args ...any) {
	o.line(o.muted, format, args...)
}

// Success writes a line in the success color.
func (o *Output) Success(format string, args ...any) {
	o.line(o.success, format, args...)
}

// Warning writes a line in the warning color.
func (o *Output) Warning(format string, args ...any) {
	o.line(o.warning, format, args...)
}

// Failure writes a line in the failure color.
func (o *Output) Failure(format string, args ...any) {
	o.line(o.failure, format, args...)
}

func (o *Output) line(style lipgloss.Style, format string, args ...any) {
	o.written = true
	fmt.Fprintln(o.w, style.Render(fmt.Sprintf(format, args...)))
}

// errorOutput is the JSON shape of a failed command.
type errorOutput struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Error renders err as JSON unless the command already rendered its own
// result. Text mode leaves errors to stderr.
func (o *Output) Error(err error) {
	if !o.json || o.written {
		return
	}
	var out errorOutput
	out.Error.Code = docsync.ErrorCode(err)
	out.Error.Message = docsync.ErrorMessage(err)
	if out.Error.Code == docsync.EINTERNAL {
		out.Error.Message = err.Error()
	}
	_ = o.Encode(out)
}

// formatAge renders a duration the way people read data freshness.
func formatAge(d time.Duration) string {
	switch {
	case d <= 0:
		return "unknown"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}

// formatBytes renders a size in B, KB or MB.
func formatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
