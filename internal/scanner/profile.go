package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odcscan/odcscan/internal/discovery"
)

const (
	ReportFileName = "dependency-check-report.json"
	MavenGoal      = "org.owasp:dependency-check-maven:check"
)

// Tools names the executables each profile invokes.
type Tools struct {
	Maven           string
	DependencyCheck string
}

func DefaultTools() Tools {
	return Tools{Maven: "mvn", DependencyCheck: "dependency-check"}
}

// Profile is everything needed to invoke a scan for one project.
type Profile struct {
	Executable string
	Args       []string
	Dir        string
	ReportPath string
	// TempDir is owned by the profile and removed by the cleanup func
	// returned from NewProfile.
	TempDir string
}

func (p Profile) CommandLine() []string {
	return append([]string{p.Executable}, p.Args...)
}

// NewProfile derives the invocation for project. The returned cleanup must be
// called once the report has been consumed; it is never nil.
func NewProfile(project discovery.Project, tools Tools) (Profile, func(), error) {
	noop := func() {}

	switch project.Kind {
	case discovery.KindJavaMaven:
		return mavenProfile(project, tools), noop, nil

	case discovery.KindJavaScriptNode:
		tempDir, err := os.MkdirTemp("", "odcscan-"+project.Name+"-*")
		if err != nil {
			return Profile{}, noop, fmt.Errorf("failed to create temp directory: %w", err)
		}
		cleanup := func() { os.RemoveAll(tempDir) }
		return nodeProfile(project, tools, tempDir), cleanup, nil
	}

	return Profile{}, noop, fmt.Errorf("unsupported project kind %q", project.Kind)
}

func mavenProfile(project discovery.Project, tools Tools) Profile {
	return Profile{
		Executable: tools.Maven,
		Args: []string{
			"-B",
			MavenGoal,
			"-Dformats=JSON",
		},
		Dir:        project.Path,
		ReportPath: filepath.Join(project.Path, "target", ReportFileName),
	}
}

func nodeProfile(project discovery.Project, tools Tools, outDir string) Profile {
	return Profile{
		Executable: tools.DependencyCheck,
		Args: []string{
			"--project", project.Name,
			"--scan", project.Path,
			"--format", "JSON",
			"--out", outDir,
			// JAR, Maven Central and .NET analyzers are irrelevant for npm trees
			// and the central lookups need network.
			"--disableJar",
			"--disableCentral",
			"--disableAssembly",
		},
		ReportPath: filepath.Join(outDir, ReportFileName),
		TempDir:    outDir,
	}
}
