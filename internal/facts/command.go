package facts

import (
	"context"
)

// posixLookupScript resolves $1 with the shell's command builtin. The name is
// passed as a positional parameter so it is never parsed as shell syntax.
const posixLookupScript = `command -v "$1" >/dev/null 2>&1`

// CheckCommand reports whether name resolves to a command on the platform.
// Android and iOS always report false without spawning a process.
func (d *Detector) CheckCommand(ctx context.Context, name string) bool {
	platform := d.platform()
	switch platform {
	case "android", "ios":
		return false
	}
	if name == "" {
		return false
	}

	lookup, args := lookupInvocation(platform, name)
	if err := d.runner().Run(ctx, lookup, args...); err != nil {
		d.logger().Debug("command lookup failed", "command", name, "lookup", lookup, "error", err)
		return false
	}
	return true
}

// lookupInvocation returns the lookup utility and its arguments for name.
func lookupInvocation(platform, name string) (string, []string) {
	if platform == "windows" {
		return "where", []string{name}
	}
	return "sh", []string{"-c", posixLookupScript, "sh", name}
}
