package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Parser handles parsing HCL configuration files
type Parser struct {
	parser    *hclparse.Parser
	variables map[string]cty.Value
	overrides map[string]string // string values, coerced to the declared type
	baseDir   string            // directory containing the parsed file
}

// NewParser creates a new HCL parser
func NewParser() *Parser {
	return &Parser{
		parser:    hclparse.NewParser(),
		variables: make(map[string]cty.Value),
		overrides: make(map[string]string),
	}
}

// SetVariable sets a variable value, overriding any default in the file.
// The value is converted to the variable's declared type when parsed.
func (p *Parser) SetVariable(name string, value string) {
	p.overrides[name] = value
	p.variables[name] = cty.StringVal(value)
}

// SetVariableValue sets a variable with a cty.Value directly
func (p *Parser) SetVariableValue(name string, value cty.Value) {
	p.variables[name] = value
}

// GetBaseDir returns the directory of the last parsed file. Relative paths
// in that file resolve against it.
func (p *Parser) GetBaseDir() string {
	return p.baseDir
}

// ParseFile parses a single HCL file
func (p *Parser) ParseFile(filename string) (*Settings, hcl.Diagnostics) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read file",
			Detail:   err.Error(),
		}}
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to resolve file path",
			Detail:   err.Error(),
		}}
	}
	p.baseDir = filepath.Dir(absPath)

	return p.ParseSource(src, filename)
}

// ParseSource parses HCL source. filename is only used in diagnostics.
func (p *Parser) ParseSource(src []byte, filename string) (*Settings, hcl.Diagnostics) {
	file, diags := p.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	return p.decodeConfig(file.Body)
}

// decodeConfig decodes variables, then the settings with variables in scope
func (p *Parser) decodeConfig(body hcl.Body) (*Settings, hcl.Diagnostics) {
	var config Config

	ctx := p.buildEvalContext()
	diags := gohcl.DecodeBody(body, ctx, &config)
	if diags.HasErrors() {
		return nil, diags
	}

	for _, v := range config.Variables {
		diags = append(diags, p.resolveVariable(v, ctx)...)
	}
	if diags.HasErrors() {
		return nil, diags
	}

	var settings Settings
	diags = append(diags, gohcl.DecodeBody(config.Remain, p.buildEvalContext(), &settings)...)
	if diags.HasErrors() {
		return nil, diags
	}

	return &settings, diags
}

// resolveVariable picks the value of v from, in order, a SetVariable
// override, a SetVariableValue or var file value, and the declared default.
// The result is converted to the declared type.
func (p *Parser) resolveVariable(v *Variable, ctx *hcl.EvalContext) hcl.Diagnostics {
	ty, diags := variableType(v)
	if diags.HasErrors() {
		return diags
	}

	if raw, ok := p.overrides[v.Name]; ok {
		val, err := coerceString(raw, ty)
		if err != nil {
			return append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Invalid value for variable %q", v.Name),
				Detail:   err.Error(),
			})
		}
		p.variables[v.Name] = val
		return diags
	}

	val, set := p.variables[v.Name]
	if !set {
		if v.Default == nil {
			return diags
		}
		var valDiags hcl.Diagnostics
		val, valDiags = v.Default.Value(ctx)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() || val.IsNull() {
			return diags
		}
	}

	var subject *hcl.Range
	if v.Default != nil {
		rng := v.Default.Range()
		subject = &rng
	}
	converted, convDiags := convertValue(val, ty, v.Name, subject)
	diags = append(diags, convDiags...)
	if !convDiags.HasErrors() {
		p.variables[v.Name] = converted
	}
	return diags
}

// buildEvalContext creates the evaluation context for HCL expressions
func (p *Parser) buildEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(p.variables))
	for k, v := range p.variables {
		vars[k] = v
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(vars),
		},
		Functions: standardFunctions(p.baseDir),
	}
}
