package output

import (
	"os"

	"golang.org/x/term"

	"github.com/odcscan/odcscan/internal/report"
)

// ColorMode selects when ANSI colours are emitted.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[91m"
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
	ansiBlue   = "\033[94m"
	ansiCyan   = "\033[96m"
)

// Palette wraps text in ANSI colour codes when Enabled. The zero value
// renders plain text.
type Palette struct {
	Enabled bool
}

// NewPalette resolves mode against f. A non-empty NO_COLOR always wins.
func NewPalette(mode ColorMode, f *os.File) Palette {
	if os.Getenv("NO_COLOR") != "" {
		return Palette{}
	}
	switch mode {
	case ColorAlways:
		return Palette{Enabled: true}
	case ColorNever:
		return Palette{}
	}
	return Palette{Enabled: f != nil && term.IsTerminal(int(f.Fd()))}
}

func (p Palette) wrap(code, s string) string {
	if !p.Enabled {
		return s
	}
	return code + s + ansiReset
}

func (p Palette) Bold(s string) string   { return p.wrap(ansiBold, s) }
func (p Palette) Red(s string) string    { return p.wrap(ansiRed, s) }
func (p Palette) Green(s string) string  { return p.wrap(ansiGreen, s) }
func (p Palette) Yellow(s string) string { return p.wrap(ansiYellow, s) }
func (p Palette) Blue(s string) string   { return p.wrap(ansiBlue, s) }
func (p Palette) Cyan(s string) string   { return p.wrap(ansiCyan, s) }

func (p Palette) Heading(s string) string {
	return p.wrap(ansiBold+ansiBlue, s)
}

// Severity colours s by sev: red, yellow, cyan, then green for the rest.
func (p Palette) Severity(sev report.Severity, s string) string {
	switch sev {
	case report.SeverityCritical:
		return p.Red(s)
	case report.SeverityHigh:
		return p.Yellow(s)
	case report.SeverityMedium:
		return p.Cyan(s)
	default:
		return p.Green(s)
	}
}
