package facts

import (
	"runtime"
	"slices"
	"testing"
)

func TestPlatform(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "macos"},
		{"linux", "linux"},
		{"windows", "windows"},
		{"freebsd", "freebsd"},
		{"illumos", "illumos"},
		{"android", "android"},
		{"ios", "ios"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			if got := Platform(tt.goos); got != tt.want {
				t.Errorf("Platform(%q) = %q, want %q", tt.goos, got, tt.want)
			}
		})
	}
}

func TestHostPlatform(t *testing.T) {
	if got := HostPlatform(); got != Platform(runtime.GOOS) {
		t.Errorf("HostPlatform() = %q, want %q", got, Platform(runtime.GOOS))
	}
}

func TestDefaultFamilies(t *testing.T) {
	seen := make(map[string]string)
	for _, f := range DefaultFamilies() {
		if f.Probes() == (f.Constant != "") {
			t.Errorf("family %q must set exactly one of candidates or constant", f.Name)
		}
		for _, p := range f.Platforms {
			if other, dup := seen[p]; dup {
				t.Errorf("platform %q covered by both %q and %q", p, other, f.Name)
			}
			seen[p] = f.Name
		}
	}

	linux, ok := FindFamily(DefaultFamilies(), "linux")
	if !ok {
		t.Fatal("no family for linux")
	}
	want := []string{"apt", "dnf", "zypper", "pacman", "emerge", "nix-env"}
	if !slices.Equal(linux.Candidates, want) {
		t.Errorf("linux candidates = %v, want %v", linux.Candidates, want)
	}
}

func TestFindFamily_Unknown(t *testing.T) {
	for _, p := range []string{"android", "ios", "plan9", "illumos", ""} {
		if f, ok := FindFamily(DefaultFamilies(), p); ok {
			t.Errorf("FindFamily(%q) = %q, want none", p, f.Name)
		}
	}
}

func TestMergeFamilies(t *testing.T) {
	overrides := []Family{
		{Name: "solaris-ips", Platforms: []string{"solaris"}, Candidates: []string{"pkg"}},
	}

	merged := MergeFamilies(DefaultFamilies(), overrides)

	solaris, ok := FindFamily(merged, "solaris")
	if !ok || solaris.Name != "solaris-ips" {
		t.Errorf("solaris family = %q, want solaris-ips", solaris.Name)
	}

	freebsd, ok := FindFamily(merged, "freebsd")
	if !ok || freebsd.Name != "bsd" || freebsd.Constant != "pkg" {
		t.Errorf("freebsd family = %+v, want bsd constant pkg", freebsd)
	}
	if slices.Contains(freebsd.Platforms, "solaris") {
		t.Error("bsd family still lists solaris after override")
	}

	// The base table must not be modified.
	base, _ := FindFamily(DefaultFamilies(), "freebsd")
	if !slices.Contains(base.Platforms, "solaris") {
		t.Error("DefaultFamilies() was modified by MergeFamilies")
	}
}

func TestMergeFamilies_NoOverrides(t *testing.T) {
	base := DefaultFamilies()
	if got := MergeFamilies(base, nil); len(got) != len(base) {
		t.Errorf("MergeFamilies(base, nil) has %d families, want %d", len(got), len(base))
	}
}
