package report_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odcscan/odcscan/internal/report"
)

func writeReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dependency-check-report.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MinimalReport(t *testing.T) {
	path := writeReport(t, `{"dependencies":[{"filePath":"/x/libfoo.jar","vulnerabilities":[{"name":"CVE-2024-0001","severity":"HIGH"}]}]}`)

	r, err := report.Load(path)
	require.NoError(t, err)

	s := report.Summarize(r, "demo")
	assert.Equal(t, "demo", s.ProjectName)
	assert.Equal(t, 1, s.DependencyCount)
	require.Len(t, s.Vulnerable, 1)
	assert.Equal(t, 1, s.Counts.Total)
	assert.Equal(t, 1, s.Counts.High)
	assert.Equal(t, "libfoo.jar", s.Vulnerable[0].DisplayName())
	assert.Equal(t, "CVE-2024-0001", s.Vulnerable[0].Vulnerabilities[0].ID())
	assert.Equal(t, report.SeverityHigh, s.Vulnerable[0].Vulnerabilities[0].NormalizedSeverity())
}

func TestLoad_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") },
			wantErr: fs.ErrNotExist,
		},
		{
			name: "invalid json",
			path: func(t *testing.T) string { return writeReport(t, "{{{{") },
		},
		{
			name: "wrong structure",
			path: func(t *testing.T) string { return writeReport(t, `{"dependencies":"nope"}`) },
		},
		{
			name: "top level array",
			path: func(t *testing.T) string { return writeReport(t, `[]`) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.path(t)
			_, err := report.Load(path)
			require.Error(t, err)

			var pf *report.ParseFailure
			require.True(t, errors.As(err, &pf))
			assert.Equal(t, path, pf.Path)
			assert.Contains(t, err.Error(), path)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestLoad_MissingDependenciesIsEmpty(t *testing.T) {
	for _, doc := range []string{`{}`, `{"dependencies":null}`, `{"dependencies":[]}`, `null`} {
		r, err := report.Load(writeReport(t, doc))
		require.NoError(t, err, doc)
		assert.NotNil(t, r.Dependencies)
		assert.Empty(t, r.Dependencies)

		s := report.Summarize(r, "p")
		assert.True(t, s.Clean())
		assert.Zero(t, s.Counts.Total)
	}
}

func TestSummarize_NoVulnerableDependencies(t *testing.T) {
	r, err := report.Parse("mem", []byte(`{"dependencies":[{"filePath":"/a.jar"},{"filePath":"/b.jar","vulnerabilities":[]}]}`))
	require.NoError(t, err)

	s := report.Summarize(r, "p")
	assert.True(t, s.Clean())
	assert.Equal(t, 2, s.DependencyCount)
}

func TestSummarize_SeverityAccounting(t *testing.T) {
	r, err := report.Parse("mem", []byte(`{"dependencies":[
		{"filePath":"/a.jar","vulnerabilities":[
			{"name":"CVE-1","severity":"critical"},
			{"name":"CVE-2","severity":"High"},
			{"name":"CVE-3","severity":"MEDIUM"},
			{"name":"CVE-4","severity":"low"},
			{"name":"CVE-5","severity":"info"}
		]},
		{"filePath":"/b.jar","vulnerabilities":[
			{"name":"CVE-6","severity":"moderate"},
			{"name":"CVE-7"},
			{"name":"CVE-8","severity":"HIGH"}
		]},
		{"filePath":"/c.jar"}
	]}`))
	require.NoError(t, err)

	s := report.Summarize(r, "p")
	c := s.Counts

	assert.Equal(t, 3, s.DependencyCount)
	assert.Len(t, s.Vulnerable, 2)
	assert.Equal(t, report.SeverityCounts{
		Critical: 1, High: 2, Medium: 1, Low: 1, Info: 1, Unrecognized: 2, Total: 8,
	}, c)
	assert.Equal(t, c.Total, c.Named()+c.Unrecognized)
	assert.Less(t, c.Named(), c.Total)
}

func TestNormalizeSeverity(t *testing.T) {
	testCases := []struct {
		in       string
		expected report.Severity
	}{
		{in: "high", expected: report.SeverityHigh},
		{in: "Critical", expected: report.SeverityCritical},
		{in: "", expected: report.SeverityUnknown},
		{in: "moderate", expected: "MODERATE"},
		// Only case is folded; padded values stay unrecognized.
		{in: " low ", expected: " LOW "},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got := report.NormalizeSeverity(tc.in)
			assert.Equal(t, tc.expected, got)
		})
	}
	assert.False(t, report.NormalizeSeverity(" low ").Known())
}

func TestSummarize_AllKnownSeveritiesSumToTotal(t *testing.T) {
	r, err := report.Parse("mem", []byte(`{"dependencies":[{"filePath":"/a.jar","vulnerabilities":[
		{"name":"A","severity":"LOW"},{"name":"B","severity":"LOW"},{"name":"C","severity":"CRITICAL"}
	]}]}`))
	require.NoError(t, err)

	c := report.Summarize(r, "p").Counts
	assert.Equal(t, c.Total, c.Named())
	assert.Zero(t, c.Unrecognized)
	assert.Equal(t, 2, c.Get(report.SeverityLow))
	assert.Equal(t, 1, c.Get(report.SeverityCritical))
}

func TestResolveIdentity(t *testing.T) {
	testCases := []struct {
		name     string
		dep      report.Dependency
		identity string
		display  string
	}{
		{
			name:     "file path",
			dep:      report.Dependency{FilePath: "/home/u/.m2/repository/org/foo/foo-1.0.jar"},
			identity: "/home/u/.m2/repository/org/foo/foo-1.0.jar",
			display:  "foo-1.0.jar",
		},
		{
			name:     "falls back to first package id",
			dep:      report.Dependency{Packages: []report.Package{{ID: "pkg:npm/lodash@4.17.20"}, {ID: "other"}}},
			identity: "pkg:npm/lodash@4.17.20",
			display:  "lodash@4.17.20",
		},
		{
			name:     "empty file path falls through",
			dep:      report.Dependency{FilePath: "", Packages: []report.Package{{ID: "pkg:npm/minimist@0.0.8"}}},
			identity: "pkg:npm/minimist@0.0.8",
			display:  "minimist@0.0.8",
		},
		{
			name:     "unresolved",
			dep:      report.Dependency{Packages: []report.Package{{}}},
			identity: report.UnresolvedIdentity,
			display:  report.UnresolvedIdentity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := report.ResolveIdentity(tc.dep, report.DefaultIdentityStrategies)
			assert.Equal(t, tc.identity, id)
			assert.Equal(t, tc.display, report.DisplayName(id))
		})
	}
}

func TestVulnerability_Defaults(t *testing.T) {
	v := report.Vulnerability{}
	assert.Equal(t, report.MissingVulnerabilityID, v.ID())
	assert.Equal(t, report.SeverityUnknown, v.NormalizedSeverity())
	assert.False(t, v.NormalizedSeverity().Known())
	assert.True(t, report.SeverityInfo.Known())
}
