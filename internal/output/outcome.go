package output

import (
	"github.com/odcscan/odcscan/internal/discovery"
	"github.com/odcscan/odcscan/internal/report"
	"github.com/odcscan/odcscan/internal/scanner"
)

// Status classifies how a project's scan ended.
type Status string

const (
	StatusClean         Status = "clean"
	StatusVulnerable    Status = "vulnerable"
	StatusToolError     Status = "tool-error"
	StatusScanFailed    Status = "scan-failed"
	StatusReportMissing Status = "report-missing"
	StatusReportInvalid Status = "report-invalid"
	StatusProfileError  Status = "profile-error"
)

// Outcome is everything known about one project after the run.
type Outcome struct {
	Project discovery.Project
	Result  *scanner.ScanResult
	Summary *report.Summary
	Status  Status
	Message string
}

func (o Outcome) Failed() bool {
	switch o.Status {
	case StatusClean, StatusVulnerable:
		return false
	}
	return true
}
