package report

import "path/filepath"

// UnresolvedIdentity is shown when no strategy can name a dependency.
const UnresolvedIdentity = "unknown"

// IdentityStrategy extracts a display identity from a dependency. It returns
// false when the dependency lacks the field it reads.
type IdentityStrategy interface {
	Name() string
	Resolve(dep Dependency) (string, bool)
}

type filePathStrategy struct{}

func (filePathStrategy) Name() string { return "filePath" }

func (filePathStrategy) Resolve(dep Dependency) (string, bool) {
	return dep.FilePath, dep.FilePath != ""
}

type firstPackageStrategy struct{}

func (firstPackageStrategy) Name() string { return "packages[0].id" }

func (firstPackageStrategy) Resolve(dep Dependency) (string, bool) {
	if len(dep.Packages) == 0 || dep.Packages[0].ID == "" {
		return "", false
	}
	return dep.Packages[0].ID, true
}

// DefaultIdentityStrategies: Maven reports carry a filePath for every jar,
// npm entries are sometimes virtual and only have a package URL.
var DefaultIdentityStrategies = []IdentityStrategy{
	filePathStrategy{},
	firstPackageStrategy{},
}

// ResolveIdentity tries strategies in order and returns the first hit, or
// UnresolvedIdentity.
func ResolveIdentity(dep Dependency, strategies []IdentityStrategy) string {
	for _, s := range strategies {
		if v, ok := s.Resolve(dep); ok {
			return v
		}
	}
	return UnresolvedIdentity
}

// DisplayName is the last path segment of the resolved identity.
func DisplayName(identity string) string {
	return filepath.Base(identity)
}
