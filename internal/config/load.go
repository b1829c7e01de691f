package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/z0mbix/pakcmd/internal/facts"
)

// DefaultRelPath is the config file location relative to the XDG config dirs.
const DefaultRelPath = "pakcmd/pakcmd.hcl"

// DefaultPath returns the first existing pakcmd.hcl in the XDG config
// directories.
func DefaultPath() (string, bool) {
	path, err := xdg.SearchConfigFile(DefaultRelPath)
	if err != nil {
		return "", false
	}
	return path, true
}

// Load parses and validates the configuration file at path. Variable files
// in the same directory are applied first; vars override both them and the
// defaults declared in the file.
func Load(path string, vars map[string]string) (*Settings, error) {
	p := NewParser()

	fileVars, diags := LoadVarFiles(VarFiles(filepath.Dir(path)))
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to load variable files: %s", diags.Error())
	}
	for k, v := range fileVars {
		p.SetVariableValue(k, v)
	}
	for k, v := range vars {
		p.SetVariable(k, v)
	}

	settings, diags := p.ParseFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", path, diags.Error())
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	if settings.OSRelease != nil {
		resolved := resolvePath(p.GetBaseDir(), *settings.OSRelease)
		settings.OSRelease = &resolved
	}
	return settings, nil
}

// Validate checks attribute values that HCL decoding cannot.
func (s *Settings) Validate() error {
	if _, err := s.Timeout(); err != nil {
		return err
	}
	if s.VersionArg != nil && *s.VersionArg == "" {
		return fmt.Errorf("version_arg must not be empty")
	}
	if s.OSRelease != nil && *s.OSRelease == "" {
		return fmt.Errorf("os_release must not be empty")
	}

	seen := make(map[string]string)
	for _, f := range s.Families {
		hasConstant := f.Constant != nil && *f.Constant != ""
		if hasConstant == (len(f.Candidates) > 0) {
			return fmt.Errorf("family.%s: exactly one of candidates or constant is required", f.Name)
		}
		for _, c := range f.Candidates {
			if c == "" {
				return fmt.Errorf("family.%s: empty candidate", f.Name)
			}
		}
		for _, p := range f.platforms() {
			if other, dup := seen[p]; dup {
				return fmt.Errorf("family.%s: platform %q already covered by family.%s", f.Name, p, other)
			}
			seen[p] = f.Name
		}
	}
	return nil
}

// Timeout returns the parsed probe_timeout, or zero when unset.
func (s *Settings) Timeout() (time.Duration, error) {
	if s.ProbeTimeout == nil {
		return 0, nil
	}
	d, err := time.ParseDuration(*s.ProbeTimeout)
	if err != nil {
		return 0, fmt.Errorf("probe_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("probe_timeout must not be negative")
	}
	return d, nil
}

// FamilyOverrides converts the family blocks for facts.MergeFamilies.
func (s *Settings) FamilyOverrides() []facts.Family {
	families := make([]facts.Family, 0, len(s.Families))
	for _, f := range s.Families {
		family := facts.Family{
			Name:       f.Name,
			Platforms:  f.platforms(),
			Candidates: f.Candidates,
		}
		if f.Constant != nil {
			family.Constant = *f.Constant
		}
		families = append(families, family)
	}
	return families
}

// platforms returns the normalized platforms the block applies to
func (f *FamilyBlock) platforms() []string {
	names := f.Platforms
	if len(names) == 0 {
		names = []string{f.Name}
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = facts.Platform(n)
	}
	return out
}
