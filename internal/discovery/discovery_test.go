package discovery_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odcscan/odcscan/internal/discovery"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func mkTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(f)))
	}
	return root
}

// collect drains Discover into the projects and errors it yielded.
func collect(root string, opts discovery.Options) ([]discovery.Project, []error) {
	var (
		projects []discovery.Project
		errs     []error
	)
	for p, err := range discovery.Discover(root, opts) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		projects = append(projects, p)
	}
	return projects, errs
}

func TestDiscover_MavenAndNodeSiblings(t *testing.T) {
	root := mkTree(t,
		"A/pom.xml",
		"A/sub/package.json",
		"B/package.json",
		"B/lib/pom.xml",
	)

	projects, errs := collect(root, discovery.Options{})
	assert.Empty(t, errs)
	require.Len(t, projects, 2)

	assert.Equal(t, discovery.Project{Path: filepath.Join(root, "A"), Name: "A", Kind: discovery.KindJavaMaven}, projects[0])
	assert.Equal(t, discovery.Project{Path: filepath.Join(root, "B"), Name: "B", Kind: discovery.KindJavaScriptNode}, projects[1])
}

func TestDiscover_MavenWinsOverNode(t *testing.T) {
	root := mkTree(t, "svc/pom.xml", "svc/package.json")

	projects, errs := collect(root, discovery.Options{})
	require.Empty(t, errs)
	require.Len(t, projects, 1)
	assert.Equal(t, discovery.KindJavaMaven, projects[0].Kind)
}

func TestDiscover_RootIsProject(t *testing.T) {
	root := mkTree(t, "package.json", "packages/a/package.json")

	projects, errs := collect(root, discovery.Options{})
	require.Empty(t, errs)
	require.Len(t, projects, 1)
	assert.Equal(t, root, projects[0].Path)
	assert.Equal(t, filepath.Base(root), projects[0].Name)
}

func TestDiscover_IgnoredDirectories(t *testing.T) {
	root := mkTree(t,
		".git/package.json",
		"target/pom.xml",
		"node_modules/left-pad/package.json",
		"odc-report/package.json",
		"apps/web/package.json",
	)

	projects, errs := collect(root, discovery.Options{})
	require.Empty(t, errs)
	require.Len(t, projects, 1)
	assert.Equal(t, filepath.Join(root, "apps", "web"), projects[0].Path)
}

func TestDiscover_CustomIgnoreDirs(t *testing.T) {
	root := mkTree(t, "vendor/package.json", "target/pom.xml")

	projects, errs := collect(root, discovery.Options{IgnoreDirs: []string{"vendor"}})
	require.Empty(t, errs)
	require.Len(t, projects, 1)
	assert.Equal(t, "target", projects[0].Name)
}

func TestDiscover_IgnorePathsMatchLocationOnly(t *testing.T) {
	root := mkTree(t,
		"reports/package.json",
		"svc/reports/package.json",
	)

	projects, errs := collect(root, discovery.Options{IgnorePaths: []string{filepath.Join(root, "reports")}})
	require.Empty(t, errs)
	require.Len(t, projects, 1)
	assert.Equal(t, filepath.Join(root, "svc", "reports"), projects[0].Path)
}

func TestDiscover_NoProjects(t *testing.T) {
	root := mkTree(t, "docs/README.md")

	projects, errs := collect(root, discovery.Options{})
	assert.Empty(t, errs)
	assert.Empty(t, projects)
}

func TestDiscover_RootNotDirectory(t *testing.T) {
	root := mkTree(t, "file.txt")

	projects, errs := collect(filepath.Join(root, "file.txt"), discovery.Options{})
	assert.Empty(t, projects)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], discovery.ErrNotDirectory)

	projects, errs = collect(filepath.Join(root, "missing"), discovery.Options{})
	assert.Empty(t, projects)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestDiscover_OnlyFilter(t *testing.T) {
	root := mkTree(t,
		"api/pom.xml",
		"api/frontend/package.json",
		"web/package.json",
	)

	testCases := []struct {
		name     string
		only     discovery.Kind
		expected []string
	}{
		{name: "maven only", only: discovery.KindJavaMaven, expected: []string{"api"}},
		{name: "node only", only: discovery.KindJavaScriptNode, expected: []string{"web"}},
		{name: "no filter", only: "", expected: []string{"api", "web"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			projects, errs := collect(root, discovery.Options{Only: tc.only})
			require.Empty(t, errs)

			var names []string
			for _, p := range projects {
				if tc.only != "" {
					assert.Equal(t, tc.only, p.Kind)
				}
				names = append(names, p.Name)
			}
			assert.Equal(t, tc.expected, names)
		})
	}
}

func TestDiscover_NoNestedProjects(t *testing.T) {
	root := mkTree(t,
		"a/pom.xml",
		"a/b/pom.xml",
		"a/b/c/package.json",
		"x/y/package.json",
		"x/y/z/package.json",
		"x/w/pom.xml",
	)

	projects, errs := collect(root, discovery.Options{})
	require.Empty(t, errs)

	for i, p := range projects {
		for j, q := range projects {
			if i == j {
				continue
			}
			rel, err := filepath.Rel(p.Path, q.Path)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(rel, ".."), "%s is nested under %s", q.Path, p.Path)
		}
	}
	assert.Len(t, projects, 3)
}

func TestDiscover_StopsWhenConsumerStops(t *testing.T) {
	root := mkTree(t, "a/pom.xml", "b/pom.xml", "c/pom.xml")

	var seen []string
	for p, err := range discovery.Discover(root, discovery.Options{}) {
		require.NoError(t, err)
		seen = append(seen, p.Name)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestParseKind(t *testing.T) {
	k, err := discovery.ParseKind("maven")
	require.NoError(t, err)
	assert.Equal(t, discovery.KindJavaMaven, k)

	k, err = discovery.ParseKind("node")
	require.NoError(t, err)
	assert.Equal(t, discovery.KindJavaScriptNode, k)

	_, err = discovery.ParseKind("gradle")
	assert.EqualError(t, err, `unknown project kind "gradle" (want "maven" or "node")`)
}
