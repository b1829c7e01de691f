package facts

import (
	"context"

	"github.com/z0mbix/pakcmd/internal/probe"
)

// PackageManager returns the package manager of the detector's platform, or
// NotFound. Probing families try each candidate with the version argument
// and return the first one that exits 0; constant families return their
// constant without spawning anything unless VerifyConstants is set.
func (d *Detector) PackageManager(ctx context.Context) string {
	family, ok := FindFamily(d.families(), d.platform())
	if !ok {
		return NotFound
	}

	if !family.Probes() {
		if family.Constant == "" {
			return NotFound
		}
		if d.VerifyConstants && !d.probeVersion(ctx, family.Constant) {
			return NotFound
		}
		return family.Constant
	}

	for _, candidate := range family.Candidates {
		if d.probeVersion(ctx, candidate) {
			return candidate
		}
	}
	return NotFound
}

// InstalledPackageManagers probes every candidate of the platform's family
// and returns those that respond, in declared order. The result is never nil.
func (d *Detector) InstalledPackageManagers(ctx context.Context) []string {
	available := []string{}

	family, ok := FindFamily(d.families(), d.platform())
	if !ok {
		return available
	}

	if !family.Probes() {
		if family.Constant != "" && (!d.VerifyConstants || d.probeVersion(ctx, family.Constant)) {
			available = append(available, family.Constant)
		}
		return available
	}

	for _, candidate := range family.Candidates {
		if d.probeVersion(ctx, candidate) {
			available = append(available, candidate)
		}
	}
	return available
}

func (d *Detector) probeVersion(ctx context.Context, candidate string) bool {
	arg := d.VersionArg
	if arg == "" {
		arg = DefaultVersionArg
	}

	err := d.runner().Run(ctx, candidate, arg)
	switch {
	case err == nil:
	case probe.IsNotFound(err):
		d.logger().Debug("package manager not installed", "candidate", candidate)
		return false
	default:
		d.logger().Debug("package manager probe failed", "candidate", candidate, "exit_code", probe.ExitCode(err), "error", err)
		return false
	}
	d.logger().Debug("package manager probe succeeded", "candidate", candidate)
	return true
}
