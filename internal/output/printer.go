package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/odcscan/odcscan/internal/discovery"
	"github.com/odcscan/odcscan/internal/report"
)

// IDColumnWidth is the padded width of the vulnerability id column.
const IDColumnWidth = 18

const rule = "----------------------------------------------------"

// histogramOrder is what the risk distribution lists; INFO and unrecognized
// severities still count toward the total.
var histogramOrder = []report.Severity{
	report.SeverityCritical,
	report.SeverityHigh,
	report.SeverityMedium,
	report.SeverityLow,
}

// Printer writes the human-readable run log.
type Printer struct {
	Out     io.Writer
	Palette Palette
}

func NewPrinter(out io.Writer, palette Palette) *Printer {
	return &Printer{Out: out, Palette: palette}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format, args...)
}

func (p *Printer) RunStart(root string, only discovery.Kind) {
	p.printf("\nRoot directory: %s\n", root)
	if only != "" {
		p.printf("Looking for %s projects only...\n\n", only)
		return
	}
	p.printf("Looking for pom.xml and package.json projects...\n\n")
}

func (p *Printer) ScanStart(project discovery.Project) {
	p.printf("%s\n", p.Palette.Blue(fmt.Sprintf("► Starting %s scan: %s", project.Kind, project.Name)))
}

func (p *Printer) Command(argv []string) {
	p.printf("  %s %s\n", p.Palette.Yellow("Command:"), strings.Join(argv, " "))
}

func (p *Printer) LogStart() {
	p.printf("  %s\n", p.Palette.Cyan("--- tool output begins ---"))
}

func (p *Printer) LogEnd(exitCode int) {
	p.printf("  %s\n", p.Palette.Cyan(fmt.Sprintf("--- tool output ends (exit code: %d) ---", exitCode)))
}

func (p *Printer) Success(format string, args ...any) {
	p.printf("%s\n", p.Palette.Green("✔ "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Warn(format string, args ...any) {
	p.printf("%s\n", p.Palette.Yellow("⚠ "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Error(format string, args ...any) {
	p.printf("%s\n", p.Palette.Red("✖ "+fmt.Sprintf(format, args...)))
}

// Summary renders s. A clean report gets a single confirmation line and no
// histogram.
func (p *Printer) Summary(s *report.Summary) {
	pal := p.Palette

	p.printf("\n%s\n", pal.Heading(fmt.Sprintf("---------- SCAN RESULTS: %s ----------", s.ProjectName)))

	if s.Clean() {
		p.printf("\n%s\n", pal.Green("✔ No vulnerabilities found."))
		p.printf("%s\n\n", pal.Blue(rule))
		return
	}

	p.printf("\n%s\n", pal.Bold("SUMMARY:"))
	p.printf("  Dependencies scanned:    %s\n", pal.Yellow(fmt.Sprint(s.DependencyCount)))
	p.printf("  Vulnerable dependencies: %s\n", pal.Red(fmt.Sprint(len(s.Vulnerable))))
	p.printf("  Total vulnerabilities:   %s\n", pal.Red(fmt.Sprint(s.Counts.Total)))

	p.printf("\n%s\n", pal.Bold("Risk distribution:"))
	for _, sev := range histogramOrder {
		p.printf("  %s\n", pal.Severity(sev, fmt.Sprintf("%-8s: %d", sev, s.Counts.Get(sev))))
	}

	p.printf("\n%s\n", pal.Bold("VULNERABILITY DETAILS:"))
	for _, dep := range s.Vulnerable {
		p.printf("\nDependency: %s\n", pal.Blue(dep.DisplayName()))
		for _, v := range dep.Vulnerabilities {
			sev := v.NormalizedSeverity()
			p.printf("  -> %s Severity: %s\n",
				pal.Severity(sev, fmt.Sprintf("%-*s", IDColumnWidth, v.ID())),
				pal.Severity(sev, string(sev)))
		}
	}
	p.printf("\n%s\n\n", pal.Blue(rule))
}
