package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/odcscan/odcscan/internal/discovery"
	"github.com/odcscan/odcscan/internal/output"
	"github.com/odcscan/odcscan/internal/report"
	"github.com/odcscan/odcscan/internal/scanner"
)

type Options struct {
	Discovery discovery.Options
	Tools     scanner.Tools
	// Verbose streams tool output instead of printing only banners.
	Verbose bool
	Timeout time.Duration
	// ReportDir, when set, receives a copy of every consumed report.
	ReportDir string
}

type RunReport struct {
	Root     string
	Outcomes []output.Outcome
	// Skipped holds directories that could not be read during discovery.
	Skipped []error
}

func (r *RunReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}

type Pipeline struct {
	opts    Options
	printer *output.Printer
	runner  *scanner.Runner
}

func New(opts Options, printer *output.Printer) *Pipeline {
	return &Pipeline{
		opts:    opts,
		printer: printer,
		runner: scanner.NewRunner(scanner.ScanOptions{
			Verbose: opts.Verbose,
			Out:     printer.Out,
			Timeout: opts.Timeout,
		}),
	}
}

// Run scans every project under root, one at a time. Only a root that is
// missing or not a directory is returned as an error; per-project failures
// are printed and recorded on the returned RunReport.
func (p *Pipeline) Run(ctx context.Context, root string) (*RunReport, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%q is not a valid directory: %w", abs, discovery.ErrNotDirectory)
	}

	run := &RunReport{Root: abs}
	p.printer.RunStart(abs, p.opts.Discovery.Only)

	for project, err := range discovery.Discover(abs, p.opts.Discovery) {
		if err != nil {
			p.printer.Warn("Skipping directory: %v", err)
			run.Skipped = append(run.Skipped, err)
			continue
		}
		if ctx.Err() != nil {
			p.printer.Warn("Run interrupted; %s and any remaining projects were not scanned", project.Path)
			break
		}
		run.Outcomes = append(run.Outcomes, p.scanProject(ctx, abs, project))
	}

	if len(run.Outcomes) == 0 && ctx.Err() == nil {
		p.printer.Warn("%v under %s", discoveryEmpty(p.opts.Discovery.Only), abs)
	}
	klog.V(1).Infof("run finished: %d projects, %d failed", len(run.Outcomes), run.Failed())
	return run, nil
}

func discoveryEmpty(only discovery.Kind) error {
	if only == "" {
		return discovery.ErrNoProjects
	}
	return fmt.Errorf("no %s projects found", only)
}

func (p *Pipeline) scanProject(ctx context.Context, root string, project discovery.Project) output.Outcome {
	outcome := output.Outcome{Project: project}
	p.printer.ScanStart(project)

	profile, cleanup, err := scanner.NewProfile(project, p.opts.Tools)
	// Removes the Node temp dir on every path out of this function.
	defer cleanup()
	if err != nil {
		p.printer.Error("%s: %v", project.Name, err)
		outcome.Status = output.StatusProfileError
		outcome.Message = err.Error()
		return outcome
	}

	p.printer.Command(profile.CommandLine())
	if p.opts.Verbose {
		p.printer.LogStart()
	}
	result := p.runner.Run(ctx, project, profile)
	if p.opts.Verbose {
		p.printer.LogEnd(result.ExitCode)
	}
	outcome.Result = result

	switch {
	case result.ToolError != "":
		outcome.Status = output.StatusToolError
		outcome.Message = result.ToolError
		p.printer.Error("%s scan could not run for %s: %s", project.Kind, project.Name, result.ToolError)
		return outcome
	case result.ExitCode != 0:
		outcome.Status = output.StatusScanFailed
		outcome.Message = fmt.Sprintf("exit code %d", result.ExitCode)
		p.printer.Error("%s scan failed for %s (exit code %d)", project.Kind, project.Name, result.ExitCode)
		return outcome
	case result.ReportPath == "":
		outcome.Status = output.StatusReportMissing
		outcome.Message = fmt.Sprintf("report not found at %s", profile.ReportPath)
		p.printer.Warn("%s scan for %s finished without errors, but no JSON report was found at %s",
			project.Kind, project.Name, profile.ReportPath)
		return outcome
	}

	p.printer.Success("%s scan completed for %s, processing results...", project.Kind, project.Name)

	doc, err := report.Load(result.ReportPath)
	if err != nil {
		outcome.Status = output.StatusReportInvalid
		outcome.Message = err.Error()
		p.printer.Error("%s: %v", project.Name, err)
		var pf *report.ParseFailure
		if errors.As(err, &pf) {
			klog.V(2).Infof("parse failure for %s: %v", pf.Path, pf.Err)
		}
		return outcome
	}

	if p.opts.ReportDir != "" {
		if err := p.retain(root, project, result.ReportPath); err != nil {
			p.printer.Warn("%s: %v", project.Name, err)
		}
	}

	summary := report.Summarize(doc, project.Name)
	p.printer.Summary(summary)
	outcome.Summary = summary
	outcome.Status = output.StatusVulnerable
	if summary.Clean() {
		outcome.Status = output.StatusClean
	}
	return outcome
}

// RetainedReportPath is where ReportDir keeps the report for project. The
// name is built from the project's path below root so that projects sharing
// a directory name do not collide.
func RetainedReportPath(reportDir, root string, project discovery.Project) string {
	name := project.Name
	if rel, err := filepath.Rel(root, project.Path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		name = strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
	}
	return filepath.Join(reportDir, fmt.Sprintf("%s-%s-report.json", name, string(project.Kind)))
}

func (p *Pipeline) retain(root string, project discovery.Project, src string) error {
	if err := os.MkdirAll(p.opts.ReportDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	dst := RetainedReportPath(p.opts.ReportDir, root, project)
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to keep report: %w", err)
	}
	klog.V(2).Infof("kept report for %s at %s", project.Name, dst)
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
