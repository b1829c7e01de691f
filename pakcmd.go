// Package pakcmd detects the host's package manager, checks whether
// commands resolve on the host, and reports the OS or distribution name.
//
// The package-level functions inspect the running host with default
// settings. Use New to target another platform, substitute the process
// runner, or apply a configuration file.
//
// No result is cached: every call spawns its probes again.
package pakcmd

import (
	"context"
	"io"

	"github.com/z0mbix/pakcmd/internal/facts"
	"github.com/z0mbix/pakcmd/internal/probe"
	"github.com/z0mbix/pakcmd/internal/report"
)

// NotFound is returned by PackageManager when no candidate responds.
const NotFound = facts.NotFound

type (
	// Runner spawns a probe and reports whether it exited successfully.
	Runner = probe.Runner

	// RunnerFunc adapts a function to Runner.
	RunnerFunc = probe.RunnerFunc

	// Family maps platforms to their package manager candidates.
	Family = facts.Family

	// OSFacts describes the operating system and distribution.
	OSFacts = facts.OSFacts

	// Report is a snapshot of one detection pass.
	Report = facts.Facts

	// DistroLookupError is returned by GetOS when the os-release file
	// cannot be used.
	DistroLookupError = facts.DistroLookupError
)

var (
	ErrDistroFileUnavailable = facts.ErrDistroFileUnavailable
	ErrDistroFileMalformed   = facts.ErrDistroFileMalformed
)

// DefaultFamilies returns the built-in family table.
func DefaultFamilies() []Family {
	return facts.DefaultFamilies()
}

// PackageManager returns the host's package manager, or NotFound.
func PackageManager() string {
	return New().PackageManager(context.Background())
}

// CheckCommand reports whether name resolves to a command on the host.
func CheckCommand(name string) bool {
	return New().CheckCommand(context.Background(), name)
}

// GetOS returns the distribution name on Linux and the platform
// identifier elsewhere.
func GetOS() (string, error) {
	return New().OS()
}

// Detector runs detection with a fixed set of options. It holds no
// results and is safe for concurrent use.
type Detector struct {
	d facts.Detector
}

// New returns a Detector for the running host with opts applied.
func New(opts ...Option) *Detector {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Detector{d: o.detector()}
}

// Platform returns the platform identifier detection runs against.
func (d *Detector) Platform() string {
	if d.d.Platform != "" {
		return facts.Platform(d.d.Platform)
	}
	return facts.HostPlatform()
}

// PackageManager returns the first responding candidate for the
// platform's family, the family's constant, or NotFound.
func (d *Detector) PackageManager(ctx context.Context) string {
	return d.d.PackageManager(ctx)
}

// InstalledPackageManagers returns every responding candidate in
// declared order.
func (d *Detector) InstalledPackageManagers(ctx context.Context) []string {
	return d.d.InstalledPackageManagers(ctx)
}

// CheckCommand reports whether name resolves to a command. It is always
// false on android and ios.
func (d *Detector) CheckCommand(ctx context.Context, name string) bool {
	return d.d.CheckCommand(ctx, name)
}

// OS returns the distribution name on Linux and the platform identifier
// elsewhere. Errors are *DistroLookupError.
func (d *Detector) OS() (string, error) {
	return d.d.OS()
}

// OSFacts returns the OS family, distribution and version.
func (d *Detector) OSFacts(ctx context.Context) OSFacts {
	return d.d.OSFacts(ctx)
}

// Report runs every detection once and checks the given commands.
func (d *Detector) Report(ctx context.Context, commands ...string) *Report {
	return d.d.Gather(ctx, commands...)
}

// EncodeReport writes r as hcl, json or yaml.
func EncodeReport(w io.Writer, r *Report, format string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	return report.Encode(w, r, f)
}

// RenderReport executes a text/template against r. Sprig functions are
// available.
func RenderReport(w io.Writer, r *Report, tmpl string) error {
	return report.Render(w, r, tmpl)
}

// PrintReport writes a human-readable summary of r.
func PrintReport(w io.Writer, r *Report, color bool) {
	report.NewPrinter(w, color).PrintReport(r)
}

// PrintDrift writes the differences between two reports and returns
// how many there were.
func PrintDrift(w io.Writer, old, new *Report, color bool) int {
	return report.NewPrinter(w, color).PrintDrift(old, new)
}
