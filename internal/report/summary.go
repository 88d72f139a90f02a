package report

// SeverityCounts tallies vulnerabilities by severity. Unrecognized severities
// only contribute to Unrecognized and Total, never to a named bucket.
type SeverityCounts struct {
	Critical     int `json:"critical"`
	High         int `json:"high"`
	Medium       int `json:"medium"`
	Low          int `json:"low"`
	Info         int `json:"info"`
	Unrecognized int `json:"unrecognized"`
	Total        int `json:"total"`
}

func (c *SeverityCounts) Add(s Severity) {
	c.Total++
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	case SeverityInfo:
		c.Info++
	default:
		c.Unrecognized++
	}
}

// Get returns the count of a named bucket; anything else returns Unrecognized.
func (c SeverityCounts) Get(s Severity) int {
	switch s {
	case SeverityCritical:
		return c.Critical
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	case SeverityInfo:
		return c.Info
	default:
		return c.Unrecognized
	}
}

func (c SeverityCounts) Named() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

type VulnerableDependency struct {
	Identity        string
	Vulnerabilities []Vulnerability
}

func (d VulnerableDependency) DisplayName() string {
	return DisplayName(d.Identity)
}

type Summary struct {
	ProjectName     string                 `json:"project"`
	DependencyCount int                    `json:"dependencies"`
	Vulnerable      []VulnerableDependency `json:"-"`
	Counts          SeverityCounts         `json:"counts"`
}

func (s *Summary) Clean() bool {
	return len(s.Vulnerable) == 0
}

// Summarize reduces a report to the figures the summary shows, resolving
// dependency identities with DefaultIdentityStrategies.
func Summarize(r *VulnerabilityReport, projectName string) *Summary {
	return SummarizeWith(r, projectName, DefaultIdentityStrategies)
}

func SummarizeWith(r *VulnerabilityReport, projectName string, strategies []IdentityStrategy) *Summary {
	s := &Summary{
		ProjectName:     projectName,
		DependencyCount: len(r.Dependencies),
	}
	for _, dep := range r.Dependencies {
		if len(dep.Vulnerabilities) == 0 {
			continue
		}
		for _, v := range dep.Vulnerabilities {
			s.Counts.Add(v.NormalizedSeverity())
		}
		s.Vulnerable = append(s.Vulnerable, VulnerableDependency{
			Identity:        ResolveIdentity(dep, strategies),
			Vulnerabilities: dep.Vulnerabilities,
		})
	}
	return s
}
