// Package report serializes detection snapshots and prints the drift
// between two of them.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"gopkg.in/yaml.v3"

	"github.com/z0mbix/pakcmd/internal/facts"
)

// Format names an output encoding.
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts hcl, json, yaml and yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "hcl":
		return FormatHCL, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hcl, json, yaml)", s)
	}
}

// Output is the serialized form of facts.Facts.
type Output struct {
	Platform        string          `json:"platform" yaml:"platform"`
	Arch            string          `json:"arch" yaml:"arch"`
	Name            string          `json:"name" yaml:"name"`
	NameError       string          `json:"name_error,omitempty" yaml:"name_error,omitempty"`
	OS              OSOutput        `json:"os" yaml:"os"`
	PackageManager  string          `json:"package_manager" yaml:"package_manager"`
	PackageManagers []string        `json:"package_managers" yaml:"package_managers"`
	Commands        map[string]bool `json:"commands,omitempty" yaml:"commands,omitempty"`
}

type OSOutput struct {
	Name                string `json:"name" yaml:"name"`
	Family              string `json:"family" yaml:"family"`
	Distribution        string `json:"distribution" yaml:"distribution"`
	DistributionVersion string `json:"distribution_version" yaml:"distribution_version"`
}

// ToOutput converts a snapshot into its serialized form.
func ToOutput(f *facts.Facts) Output {
	managers := f.PackageManagers
	if managers == nil {
		managers = []string{}
	}
	return Output{
		Platform:  f.Platform,
		Arch:      f.Arch,
		Name:      f.Name,
		NameError: f.NameError,
		OS: OSOutput{
			Name:                f.OS.Name,
			Family:              f.OS.Family,
			Distribution:        f.OS.Distribution,
			DistributionVersion: f.OS.DistributionVersion,
		},
		PackageManager:  f.PackageManager,
		PackageManagers: managers,
		Commands:        f.Commands,
	}
}

// Encode writes f to w in the given format.
func Encode(w io.Writer, f *facts.Facts, format Format) error {
	switch format {
	case FormatJSON:
		return encodeJSON(w, f)
	case FormatYAML:
		return encodeYAML(w, f)
	case FormatHCL:
		return encodeHCL(w, f)
	default:
		return fmt.Errorf("unsupported format: %s (supported: hcl, json, yaml)", format)
	}
}

func encodeJSON(w io.Writer, f *facts.Facts) error {
	data, err := json.MarshalIndent(ToOutput(f), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func encodeYAML(w io.Writer, f *facts.Facts) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(ToOutput(f)); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

// encodeHCL writes one attribute per top-level fact, in a stable order.
func encodeHCL(w io.Writer, f *facts.Facts) error {
	val := f.ToCtyValue()

	file := hclwrite.NewEmptyFile()
	body := file.Body()
	for _, name := range []string{"platform", "arch", "name"} {
		body.SetAttributeValue(name, val.GetAttr(name))
	}
	body.AppendNewline()
	body.SetAttributeValue("os", val.GetAttr("os"))
	body.AppendNewline()
	body.SetAttributeValue("package_manager", val.GetAttr("package_manager"))
	body.SetAttributeValue("package_managers", val.GetAttr("package_managers"))
	if len(f.Commands) > 0 {
		body.AppendNewline()
		body.SetAttributeValue("commands", val.GetAttr("commands"))
	}

	_, err := w.Write(hclwrite.Format(file.Bytes()))
	return err
}

// Render executes tmpl against the serialized snapshot. Sprig functions
// are available.
func Render(w io.Writer, f *facts.Facts, tmpl string) error {
	t, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := t.Execute(w, ToOutput(f)); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	return nil
}
