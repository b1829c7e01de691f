package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Config represents the top-level configuration structure. Variables are
// decoded first; the rest of the body is decoded into Settings with the
// variables in scope.
type Config struct {
	Variables []*Variable `hcl:"variable,block"`
	Remain    hcl.Body    `hcl:",remain"`
}

// Variable represents a variable definition in HCL
type Variable struct {
	Name        string         `hcl:"name,label"`
	TypeExpr    hcl.Expression `hcl:"type,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Description string         `hcl:"description,optional"`
}

// Settings holds the detector settings of a configuration file.
// Unset attributes are nil so callers can tell them from zero values.
type Settings struct {
	OSRelease       *string        `hcl:"os_release,optional"`
	VerifyConstants *bool          `hcl:"verify_constants,optional"`
	ProbeTimeout    *string        `hcl:"probe_timeout,optional"` // Go duration, e.g. "10s"
	VersionArg      *string        `hcl:"version_arg,optional"`
	Families        []*FamilyBlock `hcl:"family,block"`
}

// FamilyBlock overrides the package manager strategy of some platforms.
type FamilyBlock struct {
	Name       string   `hcl:"name,label"`
	Platforms  []string `hcl:"platforms,optional"` // defaults to the block label
	Candidates []string `hcl:"candidates,optional"`
	Constant   *string  `hcl:"constant,optional"`
}
