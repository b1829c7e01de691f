package facts

import (
	"runtime"
	"slices"
)

// NotFound is the package manager name reported when nothing was detected.
const NotFound = "No package manager found."

// DefaultVersionArg is the argument passed to each candidate when probing.
const DefaultVersionArg = "--version"

// Platform normalizes a GOOS value into a platform identifier.
// Go reports macOS as "darwin"; every other GOOS value is kept verbatim.
func Platform(goos string) string {
	if goos == "darwin" {
		return "macos"
	}
	return goos
}

// HostPlatform returns the platform identifier of the running process.
func HostPlatform() string {
	return Platform(runtime.GOOS)
}

// Family groups the platforms that share one package manager strategy.
// A family either probes Candidates in order or reports Constant unverified.
type Family struct {
	Name       string
	Platforms  []string
	Candidates []string
	Constant   string
}

// Probes reports whether the family detects its manager by probing.
func (f Family) Probes() bool {
	return len(f.Candidates) > 0
}

// Covers reports whether the family applies to platform.
func (f Family) Covers(platform string) bool {
	return slices.Contains(f.Platforms, platform)
}

// DefaultFamilies returns the built-in family table.
// Candidate order is the detection priority.
func DefaultFamilies() []Family {
	return []Family{
		{Name: "windows", Platforms: []string{"windows"}, Candidates: []string{"winget"}},
		{Name: "bsd", Platforms: []string{"freebsd", "dragonfly", "solaris"}, Constant: "pkg"},
		{Name: "openbsd", Platforms: []string{"openbsd"}, Constant: "pkg_add"},
		{Name: "netbsd", Platforms: []string{"netbsd"}, Constant: "pkgsrc"},
		{Name: "macos", Platforms: []string{"macos"}, Candidates: []string{"brew", "port", "fink"}},
		{Name: "linux", Platforms: []string{"linux"}, Candidates: []string{"apt", "dnf", "zypper", "pacman", "emerge", "nix-env"}},
	}
}

// FindFamily returns the first family covering platform.
func FindFamily(families []Family, platform string) (Family, bool) {
	for _, f := range families {
		if f.Covers(platform) {
			return f, true
		}
	}
	return Family{}, false
}

// MergeFamilies returns base with overrides applied. An override replaces
// every base family that shares one of its platforms; the platforms it does
// not mention keep their base family.
func MergeFamilies(base, overrides []Family) []Family {
	if len(overrides) == 0 {
		return base
	}

	merged := make([]Family, 0, len(base)+len(overrides))
	merged = append(merged, overrides...)

	for _, f := range base {
		var kept []string
		for _, p := range f.Platforms {
			if _, overridden := FindFamily(overrides, p); !overridden {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			continue
		}
		f.Platforms = kept
		merged = append(merged, f)
	}

	return merged
}
