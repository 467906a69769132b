// Package main provides UI utilities for the Lead Engine CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// UI provides user-friendly output utilities. Messages go to out, progress
// indicators to errOut so piped stdout stays clean.
type UI struct {
	out      io.Writer
	errOut   io.Writer
	noColor  bool
	jsonMode bool
}

func newUIWriters(out, errOut io.Writer, jsonMode, noColor bool) *UI {
	return &UI{out: out, errOut: errOut, noColor: noColor, jsonMode: jsonMode}
}

func (ui *UI) message(attr color.Attribute, symbol, format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	line := fmt.Sprintf("%s %s\n", symbol, fmt.Sprintf(format, args...))
	if ui.noColor {
		fmt.Fprint(ui.out, line)
		return
	}
	color.New(attr).Fprint(ui.out, line)
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	ui.message(color.FgGreen, "✓", format, args...)
}

// Error prints an error message. Errors are shown even in JSON mode, on stderr.
func (ui *UI) Error(format string, args ...interface{}) {
	line := fmt.Sprintf("✗ %s\n", fmt.Sprintf(format, args...))
	if ui.noColor || ui.jsonMode {
		fmt.Fprint(ui.errOut, line)
		return
	}
	color.New(color.FgRed).Fprint(ui.errOut, line)
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	ui.message(color.FgYellow, "⚠", format, args...)
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	ui.message(color.FgCyan, "ℹ", format, args...)
}

// Step prints a step message.
func (ui *UI) Step(format string, args ...interface{}) {
	ui.message(color.FgBlue, "→", format, args...)
}

// Println prints plain text, such as an assistant reply.
func (ui *UI) Println(text string) {
	if ui.jsonMode {
		return
	}
	fmt.Fprintln(ui.out, text)
}

// Newline prints a newline.
func (ui *UI) Newline() {
	if !ui.jsonMode {
		fmt.Fprintln(ui.out)
	}
}

// Table prints a bordered table. Widths count runes so accented names line up.
func (ui *UI) Table(headers []string, rows [][]string) {
	if ui.jsonMode || len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	glyphs := [4][3]string{
		{"┌", "┬", "┐"},
		{"├", "┼", "┤"},
		{"└", "┴", "┘"},
		{"│", "│", "│"},
	}
	horizontal := "─"
	if ui.noColor {
		glyphs = [4][3]string{
			{"+", "+", "+"},
			{"+", "+", "+"},
			{"+", "+", "+"},
			{"|", "|", "|"},
		}
		horizontal = "-"
	}

	border := func(g [3]string) {
		var b strings.Builder
		b.WriteString(g[0])
		for i, w := range widths {
			b.WriteString(strings.Repeat(horizontal, w+2))
			if i < len(widths)-1 {
				b.WriteString(g[1])
			}
		}
		b.WriteString(g[2])
		ui.accent(b.String())
	}
	line := func(cells []string) {
		var b strings.Builder
		b.WriteString(glyphs[3][0])
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" " + cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell)) + " ")
			b.WriteString(glyphs[3][1])
		}
		fmt.Fprintln(ui.out, b.String())
	}

	border(glyphs[0])
	line(headers)
	border(glyphs[1])
	for _, row := range rows {
		line(row)
	}
	border(glyphs[2])
}

func (ui *UI) accent(s string) {
	if ui.noColor {
		fmt.Fprintln(ui.out, s)
		return
	}
	color.New(color.FgCyan, color.Bold).Fprintln(ui.out, s)
}

// Section prints a section header.
func (ui *UI) Section(title string) {
	if ui.jsonMode {
		return
	}
	header := fmt.Sprintf("━━━ %s ━━━", strings.ToUpper(title))
	fmt.Fprintln(ui.out)
	if ui.noColor {
		fmt.Fprintln(ui.out, header)
	} else {
		color.New(color.FgMagenta, color.Bold).Fprintln(ui.out, header)
	}
	fmt.Fprintln(ui.out)
}

// KeyValue prints a key-value pair.
func (ui *UI) KeyValue(key string, value interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Fprintf(ui.out, "  %s: %v\n", key, value)
		return
	}
	color.New(color.FgYellow).Fprintf(ui.out, "  %s: ", key)
	fmt.Fprintf(ui.out, "%v\n", value)
}

// Spinner starts an indeterminate spinner and returns its stop function.
// It does nothing in JSON mode or without color, which covers piped output.
func (ui *UI) Spinner(message string) func() {
	if ui.jsonMode || ui.noColor {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(ui.errOut))
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}

// ProgressBar returns a bar counting total items, or nil in JSON mode.
func (ui *UI) ProgressBar(total int, description string) *progressbar.ProgressBar {
	if ui.jsonMode {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.errOut),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(!ui.noColor),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(ui.errOut)
		}),
	)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

// FormatBytes formats bytes in a human-readable way.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// IsTerminal checks if stdout is a terminal.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
