// Package progress provides the in-place progress indicator and colored
// diagnostics for a checking run.
package progress

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorConfig holds RGB values for output colors.
// each field stores comma-separated RGB values (e.g., "255,0,0" for red).
type ColorConfig struct {
	Info     string // informational messages
	Warn     string // mismatch warnings
	Error    string // error messages
	Debug    string // debug traces
	Progress string // progress line
}

// Colors holds all color configuration for output formatting.
// use NewColors to create from ColorConfig.
type Colors struct {
	info     *color.Color
	warn     *color.Color
	err      *color.Color
	debug    *color.Color
	progress *color.Color
}

// NewColors creates Colors from ColorConfig.
// all colors must be provided - use config with embedded defaults fallback.
// panics if any color value is invalid (configuration error).
func NewColors(cfg ColorConfig) *Colors {
	return &Colors{
		info:     parseColorOrPanic(cfg.Info, "info"),
		warn:     parseColorOrPanic(cfg.Warn, "warn"),
		err:      parseColorOrPanic(cfg.Error, "error"),
		debug:    parseColorOrPanic(cfg.Debug, "debug"),
		progress: parseColorOrPanic(cfg.Progress, "progress"),
	}
}

// parseColorOrPanic parses RGB string and returns color, panics on invalid input.
func parseColorOrPanic(s, name string) *color.Color {
	parseRGB := func(s string) []int {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return nil
		}
		rgb := make([]int, 3)
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || v < 0 || v > 255 {
				return nil
			}
			rgb[i] = v
		}
		return rgb
	}

	rgb := parseRGB(s)
	if rgb == nil {
		panic(fmt.Sprintf("invalid color_%s value: %q", name, s))
	}
	return color.RGB(rgb[0], rgb[1], rgb[2])
}

// Logger writes the progress line to stdout and diagnostics to stderr.
// Messages arriving while a progress line is displayed terminate the line
// first so the two streams never interleave mid-line.
type Logger struct {
	stdout    io.Writer
	stderr    io.Writer
	colors    *Colors
	debug     bool
	tty       bool
	startTime time.Time
	inline    bool // a progress line is currently displayed
}

// Config holds logger configuration.
type Config struct {
	Debug   bool // emit debug traces
	NoColor bool // disable color output (sets color.NoColor globally)
}

// NewLogger creates a logger on the process streams. colors must be
// provided (created via NewColors from config).
func NewLogger(cfg Config, colors *Colors) *Logger {
	if cfg.NoColor {
		color.NoColor = true
	}
	return &Logger{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		colors:    colors,
		debug:     cfg.Debug,
		tty:       term.IsTerminal(int(os.Stdout.Fd())),
		startTime: time.Now(),
	}
}

// Progress updates the i/total indicator in place. On a terminal the line
// is rewritten with a carriage return; otherwise each update gets its own
// line so piped output stays readable.
func (l *Logger) Progress(done, total int) {
	counter := l.colors.progress.Sprintf("%d/%d", done, total)
	if l.tty {
		fmt.Fprintf(l.stdout, "\r%s", counter)
		l.inline = true
		return
	}
	fmt.Fprintf(l.stdout, "%s\n", counter)
}

// Done terminates the progress line after the final update.
func (l *Logger) Done() {
	if l.inline {
		fmt.Fprintln(l.stdout)
		l.inline = false
	}
}

// Infof writes an informational message to stderr.
func (l *Logger) Infof(format string, args ...any) {
	l.breakLine()
	fmt.Fprintln(l.stderr, l.colors.info.Sprintf(format, args...))
}

// Warnf writes a warning message to stderr.
func (l *Logger) Warnf(format string, args ...any) {
	l.breakLine()
	fmt.Fprintln(l.stderr, l.colors.warn.Sprintf("warning: "+format, args...))
}

// Errorf writes an error message to stderr.
func (l *Logger) Errorf(format string, args ...any) {
	l.breakLine()
	fmt.Fprintln(l.stderr, l.colors.err.Sprintf("error: "+format, args...))
}

// Debugf writes a debug trace to stderr when debug output is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.debug {
		return
	}
	l.breakLine()
	fmt.Fprintln(l.stderr, l.colors.debug.Sprintf(format, args...))
}

// Elapsed returns formatted elapsed time since the logger was created.
func (l *Logger) Elapsed() string {
	return strings.TrimSpace(humanize.RelTime(l.startTime, time.Now(), "", ""))
}

// breakLine terminates a pending progress line before a diagnostic message.
func (l *Logger) breakLine() {
	if l.inline {
		fmt.Fprintln(l.stdout)
		l.inline = false
	}
}
