package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// variableType returns the declared type of v, or cty.DynamicPseudoType
// when the variable has no type attribute.
func variableType(v *Variable) (cty.Type, hcl.Diagnostics) {
	expr := v.TypeExpr
	if expr == nil {
		return cty.DynamicPseudoType, nil
	}

	// gohcl fills a missing optional attribute with a zero-width expression
	rng := expr.Range()
	if rng.Start.Byte == rng.End.Byte {
		return cty.DynamicPseudoType, nil
	}

	return typeexpr.TypeConstraint(expr)
}

// convertValue converts val to the declared type of the named variable.
func convertValue(val cty.Value, ty cty.Type, name string, subject *hcl.Range) (cty.Value, hcl.Diagnostics) {
	if ty == cty.DynamicPseudoType {
		return val, nil
	}
	if val.IsNull() {
		return cty.NullVal(ty), nil
	}

	converted, err := convert.Convert(val, ty)
	if err != nil {
		return cty.NilVal, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf("Invalid value for variable %q", name),
			Detail: fmt.Sprintf("%s.\n\nExpected type: %s\nGiven type: %s",
				err.Error(), ty.FriendlyName(), val.Type().FriendlyName()),
			Subject: subject,
		}}
	}
	return converted, nil
}

// coerceString parses a string override into ty. Overrides passed from
// code arrive as strings whatever the variable's declared type.
func coerceString(s string, ty cty.Type) (cty.Value, error) {
	switch {
	case ty == cty.DynamicPseudoType, ty == cty.String:
		return cty.StringVal(s), nil
	case ty == cty.Bool:
		return coerceBool(s)
	case ty == cty.Number:
		return coerceNumber(s)
	case ty.IsCollectionType() || ty.IsObjectType() || ty.IsTupleType():
		return coerceCollection(s, ty)
	}
	return cty.NilVal, fmt.Errorf("unsupported type conversion to %s", ty.FriendlyName())
}

func coerceBool(s string) (cty.Value, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return cty.True, nil
	case "false", "0", "no", "off":
		return cty.False, nil
	}
	return cty.NilVal, fmt.Errorf("cannot convert %q to bool", s)
}

func coerceNumber(s string) (cty.Value, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return cty.NumberIntVal(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return cty.NumberFloatVal(f), nil
	}
	return cty.NilVal, fmt.Errorf("cannot convert %q to number", s)
}

// coerceCollection accepts JSON first, then an HCL literal such as
// ["apt", "dnf"].
func coerceCollection(s string, ty cty.Type) (cty.Value, error) {
	src := []byte(strings.TrimSpace(s))

	var val cty.Value
	if implied, err := ctyjson.ImpliedType(src); err == nil {
		val, err = ctyjson.Unmarshal(src, implied)
		if err != nil {
			return cty.NilVal, err
		}
	} else {
		expr, diags := hclsyntax.ParseExpression(src, "override", hcl.InitialPos)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("cannot parse %q as %s", s, ty.FriendlyName())
		}
		val, diags = expr.Value(nil)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("cannot evaluate %q: %s", s, diags.Error())
		}
	}

	converted, err := convert.Convert(val, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("value cannot be converted to %s: %w", ty.FriendlyName(), err)
	}
	return converted, nil
}
