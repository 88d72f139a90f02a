package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"k8s.io/klog/v2"

	"github.com/odcscan/odcscan/internal/discovery"
)

// ExitToolError is the exit code recorded when the tool could not be run
// to completion: not found, failed to start, stream fault or timeout.
const ExitToolError = -1

type ScanOptions struct {
	// Verbose echoes every line of tool output to Out.
	Verbose bool
	Out     io.Writer
	// Timeout bounds a single invocation; zero means no limit.
	Timeout      time.Duration
	MaxLineBytes int
}

type ScanResult struct {
	Project         discovery.Project `json:"-"`
	Command         []string          `json:"command"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	DurationSeconds float64           `json:"duration_seconds"`
	ExitCode        int               `json:"exit_code"`
	ReportPath      string            `json:"report_path,omitempty"`
	ToolError       string            `json:"error,omitempty"`
	Lines           int               `json:"output_lines"`
}

// Succeeded reports whether the tool ran and exited zero.
func (r *ScanResult) Succeeded() bool {
	return r.ExitCode == 0 && r.ToolError == ""
}

type Runner struct {
	opts ScanOptions
}

func NewRunner(opts ScanOptions) *Runner {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}
	return &Runner{opts: opts}
}

// Run executes profile for project and always returns a result; failures are
// recorded on it rather than returned.
func (r *Runner) Run(ctx context.Context, project discovery.Project, profile Profile) *ScanResult {
	result := &ScanResult{
		Project:   project,
		Command:   profile.CommandLine(),
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
		result.DurationSeconds = result.EndTime.Sub(result.StartTime).Seconds()
		klog.V(2).Infof("%s: exit %d after %.1fs", project.Path, result.ExitCode, result.DurationSeconds)
	}()

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	if profile.Dir != "" {
		if info, err := os.Stat(profile.Dir); err != nil || !info.IsDir() {
			r.fail(result, fmt.Errorf("working directory %s is not accessible", profile.Dir))
			return result
		}
	}

	cmd := exec.CommandContext(ctx, profile.Executable, profile.Args...)
	cmd.Dir = profile.Dir
	isolateProcessGroup(cmd)

	pr, pw, err := os.Pipe()
	if err != nil {
		r.fail(result, fmt.Errorf("failed to create output pipe: %w", err))
		return result
	}
	defer pr.Close()
	cmd.Stdout = pw
	cmd.Stderr = pw

	klog.V(2).Infof("starting %v in %q", result.Command, profile.Dir)
	if err := cmd.Start(); err != nil {
		pw.Close()
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			r.fail(result, fmt.Errorf("executable not found: %s", profile.Executable))
		} else {
			r.fail(result, fmt.Errorf("failed to start %s: %w", profile.Executable, err))
		}
		return result
	}
	// The child holds its own copy; EOF arrives once it and its children exit.
	pw.Close()
	// A descendant that escaped the process group can keep the write end open
	// after cancellation, so the read end is closed as well.
	stop := context.AfterFunc(ctx, func() { pr.Close() })
	defer stop()

	lines, readErr := r.stream(pr)
	result.Lines = lines
	if readErr != nil {
		// Keep the pipe drained so the child cannot block on a full buffer.
		io.Copy(io.Discard, pr)
	}

	waitErr := cmd.Wait()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		r.fail(result, fmt.Errorf("timed out after %s", r.opts.Timeout))
	case errors.Is(ctx.Err(), context.Canceled):
		r.fail(result, errors.New("interrupted"))
	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0 {
			result.ExitCode = exitErr.ExitCode()
		} else {
			r.fail(result, waitErr)
		}
	case readErr != nil:
		r.fail(result, fmt.Errorf("failed to read tool output: %w", readErr))
	}

	if result.Succeeded() && fileExists(profile.ReportPath) {
		result.ReportPath = profile.ReportPath
	}
	return result
}

func (r *Runner) stream(src io.Reader) (int, error) {
	lines := 0
	err := ReadLines(src, r.opts.MaxLineBytes, func(line string) {
		lines++
		if r.opts.Verbose {
			fmt.Fprintf(r.opts.Out, "  %s\n", line)
		}
	})
	return lines, err
}

func (r *Runner) fail(result *ScanResult, err error) {
	result.ExitCode = ExitToolError
	result.ToolError = err.Error()
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
