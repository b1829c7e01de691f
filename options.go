package pakcmd

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/z0mbix/pakcmd/internal/config"
	"github.com/z0mbix/pakcmd/internal/facts"
	"github.com/z0mbix/pakcmd/internal/logging"
	"github.com/z0mbix/pakcmd/internal/probe"
)

// Config is a parsed pakcmd.hcl file.
type Config = config.Settings

// LoadConfig parses and validates the HCL file at path. An empty path
// searches the XDG config directories for pakcmd/pakcmd.hcl and returns
// an empty Config when none exists.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigWithVars(path, nil)
}

// LoadConfigWithVars is LoadConfig with variable values that override the
// defaults declared in the file.
func LoadConfigWithVars(path string, vars map[string]string) (*Config, error) {
	if path == "" {
		found, ok := config.DefaultPath()
		if !ok {
			return &Config{}, nil
		}
		path = found
	}
	return config.Load(path, vars)
}

// Option configures a Detector.
type Option func(*options)

type options struct {
	platform        string
	runner          Runner
	families        []Family
	versionArg      string
	verifyConstants bool
	osRelease       string
	logger          *slog.Logger
	timeout         time.Duration
}

func (o *options) detector() facts.Detector {
	runner := o.runner
	if o.timeout > 0 {
		if runner == nil {
			runner = probe.ExecRunner{Timeout: o.timeout}
		} else {
			runner = withTimeout(runner, o.timeout)
		}
	}
	return facts.Detector{
		Platform:        o.platform,
		Runner:          runner,
		Families:        o.families,
		VersionArg:      o.versionArg,
		VerifyConstants: o.verifyConstants,
		OSRelease:       o.osRelease,
		Logger:          o.logger,
	}
}

func withTimeout(r Runner, d time.Duration) Runner {
	return probe.RunnerFunc(func(ctx context.Context, name string, args ...string) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return r.Run(ctx, name, args...)
	})
}

// WithPlatform detects as if running on platform. "darwin" and "macos"
// are equivalent.
func WithPlatform(platform string) Option {
	return func(o *options) {
		o.platform = platform
	}
}

// WithRunner spawns probes through r instead of os/exec.
func WithRunner(r Runner) Option {
	return func(o *options) {
		o.runner = r
	}
}

// WithOSRelease reads the distribution name from path instead of
// /etc/os-release.
func WithOSRelease(path string) Option {
	return func(o *options) {
		o.osRelease = path
	}
}

// WithLogger sends diagnostics to l. The default logs warnings to stderr.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithQuietLogging drops all diagnostics, including the distro read warning.
func WithQuietLogging() Option {
	return func(o *options) {
		o.logger = logging.NewDiscard()
	}
}

// WithJSONLogging writes diagnostics at level and above to w as JSON lines.
func WithJSONLogging(w io.Writer, level slog.Level) Option {
	return func(o *options) {
		o.logger = logging.New(logging.Config{
			Level:  level,
			Format: logging.FormatJSON,
			Output: w,
		})
	}
}

// WithVerifyConstants makes families with a fixed manager probe it too,
// returning NotFound when it does not respond.
func WithVerifyConstants(verify bool) Option {
	return func(o *options) {
		o.verifyConstants = verify
	}
}

// WithProbeTimeout bounds each probe. An expired probe counts as failed.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithVersionArg changes the argument passed to each candidate.
func WithVersionArg(arg string) Option {
	return func(o *options) {
		o.versionArg = arg
	}
}

// WithFamilies replaces the family table.
func WithFamilies(families ...Family) Option {
	return func(o *options) {
		o.families = families
	}
}

// WithConfig applies the settings of a loaded config file. Family blocks
// replace the families covering the same platforms.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		if cfg.OSRelease != nil {
			o.osRelease = *cfg.OSRelease
		}
		if cfg.VerifyConstants != nil {
			o.verifyConstants = *cfg.VerifyConstants
		}
		if cfg.VersionArg != nil {
			o.versionArg = *cfg.VersionArg
		}
		if d, err := cfg.Timeout(); err == nil && d > 0 {
			o.timeout = d
		}
		if len(cfg.Families) > 0 {
			base := o.families
			if base == nil {
				base = facts.DefaultFamilies()
			}
			o.families = facts.MergeFamilies(base, cfg.FamilyOverrides())
		}
	}
}
