package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/emirpasic/gods/sets/hashset"
	"k8s.io/klog/v2"
)

const (
	MavenManifest = "pom.xml"
	NodeManifest  = "package.json"
)

var (
	ErrNoProjects   = errors.New("no pom.xml or package.json projects found")
	ErrNotDirectory = errors.New("not a directory")
)

// DefaultIgnoreDirs are never descended into: VCS metadata, build output,
// installed dependencies and previous report output.
var DefaultIgnoreDirs = []string{".git", "target", "node_modules", "odc-report"}

type Kind string

const (
	KindJavaMaven      Kind = "maven"
	KindJavaScriptNode Kind = "node"
)

func (k Kind) String() string {
	switch k {
	case KindJavaMaven:
		return "Java/Maven"
	case KindJavaScriptNode:
		return "JavaScript"
	default:
		return string(k)
	}
}

// ParseKind accepts the short names used on the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindJavaMaven, KindJavaScriptNode:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown project kind %q (want %q or %q)", s, KindJavaMaven, KindJavaScriptNode)
}

// Project is a directory owned by a single manifest.
type Project struct {
	Path string
	Name string
	Kind Kind
}

type Options struct {
	// IgnoreDirs are directory base names skipped wherever they occur.
	IgnoreDirs []string
	// IgnorePaths are specific directories skipped by location.
	IgnorePaths []string
	// Only restricts emitted projects to one kind. Filtered manifests still
	// stop descent.
	Only Kind
}

// Discover walks root depth-first and lazily yields every project found.
// Errors reading individual subdirectories are yielded and the walk goes on;
// an error on root itself ends the sequence.
func Discover(root string, opts Options) iter.Seq2[Project, error] {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	ignore := hashset.New()
	for _, d := range ignoreDirs {
		ignore.Add(d)
	}
	ignorePaths := hashset.New()
	for _, p := range opts.IgnorePaths {
		if abs, err := filepath.Abs(p); err == nil {
			ignorePaths.Add(abs)
		}
	}

	return func(yield func(Project, error) bool) {
		info, err := os.Stat(root)
		if err != nil {
			yield(Project{}, err)
			return
		}
		if !info.IsDir() {
			yield(Project{}, fmt.Errorf("%s: %w", root, ErrNotDirectory))
			return
		}

		stopped := false
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				klog.V(2).Infof("skipping unreadable directory %s: %v", path, err)
				if !yield(Project{}, fmt.Errorf("failed to read %s: %w", path, err)) {
					stopped = true
					return filepath.SkipAll
				}
				return filepath.SkipDir
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && (ignore.Contains(d.Name()) || isIgnoredPath(ignorePaths, path)) {
				klog.V(4).Infof("ignoring %s", path)
				return filepath.SkipDir
			}

			kind, ok := classify(path)
			if !ok {
				return nil
			}
			if opts.Only != "" && kind != opts.Only {
				klog.V(2).Infof("skipping %s project %s (filtered)", kind, path)
				return filepath.SkipDir
			}

			project := Project{Path: path, Name: filepath.Base(path), Kind: kind}
			klog.V(2).Infof("found %s project %s", kind, path)
			if !yield(project, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return filepath.SkipDir
		})
		if walkErr != nil && !stopped {
			yield(Project{}, walkErr)
		}
	}
}

// classify applies the manifest priority: Maven first, then Node.
func classify(dir string) (Kind, bool) {
	if fileExists(filepath.Join(dir, MavenManifest)) {
		return KindJavaMaven, true
	}
	if fileExists(filepath.Join(dir, NodeManifest)) {
		return KindJavaScriptNode, true
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
