package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/odcscan/odcscan/internal/report"
)

type JSONOutput struct {
	Project         string                 `json:"project"`
	Path            string                 `json:"path"`
	Kind            string                 `json:"kind"`
	Status          Status                 `json:"status"`
	Message         string                 `json:"message,omitempty"`
	Command         []string               `json:"command,omitempty"`
	ExitCode        int                    `json:"exit_code"`
	Error           string                 `json:"error,omitempty"`
	DurationSeconds float64                `json:"duration_seconds"`
	Dependencies    int                    `json:"dependencies"`
	Counts          *report.SeverityCounts `json:"counts,omitempty"`
	Findings        []JSONFinding          `json:"findings,omitempty"`
}

type JSONFinding struct {
	Dependency string `json:"dependency"`
	ID         string `json:"id"`
	Severity   string `json:"severity"`
}

func PrintJSON(w io.Writer, outcomes []Outcome) error {
	outputs := make([]JSONOutput, 0, len(outcomes))

	for _, o := range outcomes {
		out := JSONOutput{
			Project: o.Project.Name,
			Path:    o.Project.Path,
			Kind:    string(o.Project.Kind),
			Status:  o.Status,
			Message: o.Message,
		}
		if r := o.Result; r != nil {
			out.Command = r.Command
			out.ExitCode = r.ExitCode
			out.Error = r.ToolError
			out.DurationSeconds = r.DurationSeconds
		}
		if s := o.Summary; s != nil {
			counts := s.Counts
			out.Dependencies = s.DependencyCount
			out.Counts = &counts
			for _, dep := range s.Vulnerable {
				for _, v := range dep.Vulnerabilities {
					out.Findings = append(out.Findings, JSONFinding{
						Dependency: dep.DisplayName(),
						ID:         v.ID(),
						Severity:   string(v.NormalizedSeverity()),
					})
				}
			}
		}
		outputs = append(outputs, out)
	}

	data, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
