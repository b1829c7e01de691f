// Package facts detects host capabilities: the platform, its package
// manager, whether commands resolve, and the distribution name.
// Nothing is cached; every call consults the host again.
package facts

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/z0mbix/pakcmd/internal/logging"
	"github.com/z0mbix/pakcmd/internal/probe"
)

// Detector holds the capabilities detection runs against. The zero value
// detects the running host with os/exec and the built-in family table.
type Detector struct {
	// Platform overrides the host platform identifier when set.
	Platform string

	// Runner spawns probes. Defaults to probe.ExecRunner.
	Runner probe.Runner

	// Families overrides the built-in family table when non-nil.
	Families []Family

	// VersionArg is passed to each candidate. Defaults to DefaultVersionArg.
	VersionArg string

	// VerifyConstants makes constant families probe their manager too.
	VerifyConstants bool

	// OSRelease overrides DefaultOSRelease.
	OSRelease string

	// Logger receives probe details and the distro read warning.
	Logger *slog.Logger
}

func (d *Detector) platform() string {
	if d.Platform != "" {
		return Platform(d.Platform)
	}
	return HostPlatform()
}

func (d *Detector) runner() probe.Runner {
	if d.Runner != nil {
		return d.Runner
	}
	return probe.ExecRunner{}
}

func (d *Detector) families() []Family {
	if d.Families != nil {
		return d.Families
	}
	return DefaultFamilies()
}

func (d *Detector) osRelease() string {
	if d.OSRelease != "" {
		return d.OSRelease
	}
	return DefaultOSRelease
}

func (d *Detector) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Default()
}

// Facts is a snapshot of one detection pass.
type Facts struct {
	Platform string
	Arch     string
	OS       OSFacts

	// Name is the result of Detector.OS, or Platform when it failed.
	Name string

	// NameError is set when Detector.OS failed.
	NameError string

	PackageManager string

	// PackageManagers lists every responding candidate.
	PackageManagers []string

	// Commands holds the requested command lookups.
	Commands map[string]bool
}

// Gather runs every detection once and collects the results. A distro
// lookup failure is recorded in NameError rather than returned.
func (d *Detector) Gather(ctx context.Context, commands ...string) *Facts {
	f := &Facts{
		Platform:        d.platform(),
		Arch:            runtime.GOARCH,
		OS:              d.OSFacts(ctx),
		PackageManager:  d.PackageManager(ctx),
		PackageManagers: d.InstalledPackageManagers(ctx),
		Commands:        make(map[string]bool, len(commands)),
	}

	name, err := d.OS()
	if err != nil {
		f.NameError = err.Error()
		name = f.Platform
	}
	f.Name = name

	for _, c := range commands {
		f.Commands[c] = d.CheckCommand(ctx, c)
	}

	return f
}

// CommandNames returns the checked command names sorted.
func (f *Facts) CommandNames() []string {
	names := make([]string, 0, len(f.Commands))
	for name := range f.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToCtyValue converts Facts to a cty.Value for use in HCL expressions
func (f *Facts) ToCtyValue() cty.Value {
	managers := cty.ListValEmpty(cty.String)
	if len(f.PackageManagers) > 0 {
		vals := make([]cty.Value, len(f.PackageManagers))
		for i, pm := range f.PackageManagers {
			vals[i] = cty.StringVal(pm)
		}
		managers = cty.ListVal(vals)
	}

	commands := cty.MapValEmpty(cty.Bool)
	if len(f.Commands) > 0 {
		vals := make(map[string]cty.Value, len(f.Commands))
		for name, ok := range f.Commands {
			vals[name] = cty.BoolVal(ok)
		}
		commands = cty.MapVal(vals)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"platform": cty.StringVal(f.Platform),
		"arch":     cty.StringVal(f.Arch),
		"name":     cty.StringVal(f.Name),
		"os": cty.ObjectVal(map[string]cty.Value{
			"name":                 cty.StringVal(f.OS.Name),
			"family":               cty.StringVal(f.OS.Family),
			"distribution":         cty.StringVal(f.OS.Distribution),
			"distribution_version": cty.StringVal(f.OS.DistributionVersion),
		}),
		"package_manager":  cty.StringVal(f.PackageManager),
		"package_managers": managers,
		"commands":         commands,
	})
}
