package ui

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	unicodeOnce sync.Once
	unicodeOK   bool

	noColorMode bool
	uiMu        sync.RWMutex
)

// StderrIsTerminal reports whether stderr is attached to a terminal.
func StderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// UnicodeTerminal reports whether stderr can render Unicode glyphs.
// Returns false when output is piped, TERM is "dumb", or on Windows
// outside Windows Terminal.
func UnicodeTerminal() bool {
	unicodeOnce.Do(func() {
		if os.Getenv("TERM") == "dumb" || !StderrIsTerminal() {
			return
		}
		if runtime.GOOS == "windows" {
			unicodeOK = os.Getenv("WT_SESSION") != ""
			return
		}
		unicodeOK = true
	})
	return unicodeOK
}

// Icon returns unicode when the terminal supports it, ascii otherwise.
func Icon(unicode, ascii string) string {
	if UnicodeTerminal() {
		return unicode
	}
	return ascii
}

// SetNoColor disables colored output.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor reports whether color is disabled.
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// ConfigureFromEnv disables color when NO_COLOR is set or stderr is not
// a terminal.
func ConfigureFromEnv() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || !StderrIsTerminal() {
		SetNoColor(true)
	}
}

// SanitizeString strips emoji and other glyphs legacy consoles cannot draw
// when the terminal is not Unicode-capable.
func SanitizeString(s string) string {
	if UnicodeTerminal() {
		return s
	}
	return sanitize(s)
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r < 0x80:
			b.WriteByte(s[i])
		case r >= 0xFE00 && r <= 0xFE0F:
			// variation selector
		case r <= 0xFF || unicode.Is(unicode.Latin, r):
			b.WriteRune(r)
		case r == '—' || r == '–':
			b.WriteByte('-')
		}
		i += size
	}
	return b.String()
}

// Fprintf writes to w with terminal-appropriate sanitization.
func Fprintf(w io.Writer, format string, args ...any) {
	fmt.Fprint(w, SanitizeString(fmt.Sprintf(format, args...)))
}
