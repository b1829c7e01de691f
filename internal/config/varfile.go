package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Variable files next to pakcmd.hcl, loaded in this order:
// pakcmd.vars.hcl, pakcmd.vars.hcl.local, then *.auto.vars.hcl sorted.
const (
	VarFileName      = "pakcmd.vars.hcl"
	LocalVarFileName = VarFileName + ".local"
	AutoVarFileExt   = ".auto.vars.hcl"
)

// LoadVarFile reads the top-level attributes of a variable file. Values
// must be literals.
func LoadVarFile(path string) (map[string]cty.Value, hcl.Diagnostics) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read variable file",
			Detail:   err.Error(),
		}}
	}

	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, diags
	}

	attrs, attrDiags := file.Body.JustAttributes()
	diags = append(diags, attrDiags...)
	if diags.HasErrors() {
		return nil, diags
	}

	values := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() {
			values[name] = val
		}
	}
	return values, diags
}

// VarFiles lists the variable files present in dir in load order.
func VarFiles(dir string) []string {
	var files []string
	for _, name := range []string{VarFileName, LocalVarFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return files
	}

	var auto []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), AutoVarFileExt) {
			auto = append(auto, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(auto)
	return append(files, auto...)
}

// LoadVarFiles loads paths in order; later files override earlier ones.
func LoadVarFiles(paths []string) (map[string]cty.Value, hcl.Diagnostics) {
	values := make(map[string]cty.Value)
	var diags hcl.Diagnostics

	for _, path := range paths {
		vars, fileDiags := LoadVarFile(path)
		diags = append(diags, fileDiags...)
		if fileDiags.HasErrors() {
			continue
		}
		for k, v := range vars {
			values[k] = v
		}
	}
	return values, diags
}
