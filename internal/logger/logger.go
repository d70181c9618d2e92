package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
	"golang.org/x/term"
)

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\033[H\033[J"

// Logger prints colorized status lines for a single restore run.
// Each level is a fatih/color printer bound to the same writer, so the
// whole run can be redirected (tests use a bytes.Buffer). A Logger is safe
// for concurrent use; each line is written under a lock so colour codes
// from different goroutines never interleave.
//
// Levels map onto what the user needs to notice:
//   - Success: captured stdout of an installer command (green)
//   - Info: progress messages (green)
//   - Warn: skipped files and non-fatal stderr (yellow)
//   - Error: failures that need attention (red)
//   - Bold: per-file section headers (bold white)
//   - Debug: only printed when debug is enabled (cyan)
type Logger struct {
	mu    sync.Mutex // guards out
	out   io.Writer
	debug bool

	success *color.Color
	info    *color.Color
	warn    *color.Color
	err     *color.Color
	bold    *color.Color
	dbg     *color.Color
}

// New returns a Logger writing to w. When enableDebug is false, Debug is a no-op.
func New(w io.Writer, enableDebug bool) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		out:     w,
		debug:   enableDebug,
		success: color.New(color.FgGreen),
		info:    color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed),
		bold:    color.New(color.FgWhite, color.Bold),
		dbg:     color.New(color.FgCyan),
	}
}

// Success prints captured command output.
func (l *Logger) Success(format string, a ...any) { l.printf(l.success, format, a...) }

// Info prints progress messages.
func (l *Logger) Info(format string, a ...any) { l.printf(l.info, format, a...) }

// Warn prints non-fatal problems.
func (l *Logger) Warn(format string, a ...any) { l.printf(l.warn, format, a...) }

// Error prints failures.
func (l *Logger) Error(format string, a ...any) { l.printf(l.err, format, a...) }

// Bold prints section headers.
func (l *Logger) Bold(format string, a ...any) { l.printf(l.bold, format, a...) }

// Debug prints diagnostics when debug logging is enabled.
func (l *Logger) Debug(format string, a ...any) {
	if !l.debug {
		return
	}
	l.printf(l.dbg, format, a...)
}

// DebugEnabled reports whether Debug output is printed.
func (l *Logger) DebugEnabled() bool { return l.debug }

// ClearScreen clears the terminal, but only when the logger writes to one.
// Redirected output (files, pipes, buffers) is left untouched.
func (l *Logger) ClearScreen() {
	f, ok := l.out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, clearScreen)
}

// printf writes one colorized message. fatih/color emits the colour prefix,
// the text and the reset as separate writes, so the lock spans all three.
func (l *Logger) printf(c *color.Color, format string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Errors writing to the terminal are not actionable.
	_, _ = c.Fprintf(l.out, format, a...)
}
