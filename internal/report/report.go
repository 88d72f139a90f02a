package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
	SeverityUnknown  Severity = "UNKNOWN"
)

// KnownSeverities are the buckets counted individually, most severe first.
var KnownSeverities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// NormalizeSeverity uppercases s. Values outside KnownSeverities are kept
// verbatim so they can still be displayed; empty becomes UNKNOWN.
func NormalizeSeverity(s string) Severity {
	s = strings.ToUpper(s)
	if s == "" {
		return SeverityUnknown
	}
	return Severity(s)
}

func (s Severity) Known() bool {
	for _, k := range KnownSeverities {
		if s == k {
			return true
		}
	}
	return false
}

// VulnerabilityReport is the subset of the Dependency-Check JSON report that
// the summary needs. Maven plugin and CLI reports share this schema.
type VulnerabilityReport struct {
	Dependencies []Dependency `json:"dependencies"`
}

type Dependency struct {
	FileName        string          `json:"fileName,omitempty"`
	FilePath        string          `json:"filePath,omitempty"`
	Packages        []Package       `json:"packages,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities,omitempty"`
}

type Package struct {
	ID string `json:"id"`
}

type Vulnerability struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
}

const MissingVulnerabilityID = "CVE-????-????"

func (v Vulnerability) ID() string {
	if v.Name == "" {
		return MissingVulnerabilityID
	}
	return v.Name
}

func (v Vulnerability) NormalizedSeverity() Severity {
	return NormalizeSeverity(v.Severity)
}

// ParseFailure is returned when a report cannot be read or decoded.
type ParseFailure struct {
	Path string
	Err  error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("failed to parse report %s: %v", e.Path, e.Err)
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

// Load reads the report at path. A missing dependencies field decodes as an
// empty list.
func Load(path string) (*VulnerabilityReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseFailure{Path: path, Err: err}
	}
	return Parse(path, data)
}

func Parse(path string, data []byte) (*VulnerabilityReport, error) {
	var r VulnerabilityReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &ParseFailure{Path: path, Err: err}
	}
	if r.Dependencies == nil {
		r.Dependencies = []Dependency{}
	}
	return &r, nil
}
