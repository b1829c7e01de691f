package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/z0mbix/pakcmd/internal/facts"
)

// Action classifies a single drift entry.
type Action int

const (
	ActionAdd Action = iota
	ActionChange
	ActionRemove
)

func (a Action) symbol() string {
	switch a {
	case ActionAdd:
		return "+"
	case ActionRemove:
		return "-"
	default:
		return "~"
	}
}

// Change is one attribute that differs between two snapshots.
type Change struct {
	Action    Action
	Attribute string
	Old       interface{}
	New       interface{}
}

// Drift lists the attributes that differ from old to new, in report order.
func Drift(old, new *facts.Facts) []Change {
	var changes []Change

	str := func(attr, o, n string) {
		if o != n {
			changes = append(changes, Change{Action: ActionChange, Attribute: attr, Old: o, New: n})
		}
	}

	str("platform", old.Platform, new.Platform)
	str("arch", old.Arch, new.Arch)
	str("name", old.Name, new.Name)
	str("os.family", old.OS.Family, new.OS.Family)
	str("os.distribution", old.OS.Distribution, new.OS.Distribution)
	str("os.distribution_version", old.OS.DistributionVersion, new.OS.DistributionVersion)
	str("package_manager", old.PackageManager, new.PackageManager)

	for _, pm := range new.PackageManagers {
		if !slices.Contains(old.PackageManagers, pm) {
			changes = append(changes, Change{Action: ActionAdd, Attribute: "package_managers", New: pm})
		}
	}
	for _, pm := range old.PackageManagers {
		if !slices.Contains(new.PackageManagers, pm) {
			changes = append(changes, Change{Action: ActionRemove, Attribute: "package_managers", Old: pm})
		}
	}

	for _, name := range mergedCommandNames(old, new) {
		attr := "commands." + name
		o, inOld := old.Commands[name]
		n, inNew := new.Commands[name]
		switch {
		case !inOld:
			changes = append(changes, Change{Action: ActionAdd, Attribute: attr, New: n})
		case !inNew:
			changes = append(changes, Change{Action: ActionRemove, Attribute: attr, Old: o})
		case o != n:
			changes = append(changes, Change{Action: ActionChange, Attribute: attr, Old: o, New: n})
		}
	}

	return changes
}

func mergedCommandNames(a, b *facts.Facts) []string {
	names := append(a.CommandNames(), b.CommandNames()...)
	slices.Sort(names)
	return slices.Compact(names)
}

// Printer prints snapshots and drift with optional colors
type Printer struct {
	out       io.Writer
	useColors bool
}

// NewPrinter creates a new printer
func NewPrinter(out io.Writer, useColors bool) *Printer {
	return &Printer{
		out:       out,
		useColors: useColors,
	}
}

func (p *Printer) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// PrintReport prints a human-readable summary of f.
func (p *Printer) PrintReport(f *facts.Facts) {
	bold := p.color(color.Bold)
	green := p.color(color.FgGreen)
	red := p.color(color.FgRed)

	_, _ = bold.Fprintf(p.out, "%s", f.Name)
	_, _ = fmt.Fprintf(p.out, " (%s/%s)\n", f.Platform, f.Arch)
	if f.NameError != "" {
		_, _ = red.Fprintf(p.out, "  name lookup failed: %s\n", f.NameError)
	}
	if f.OS.DistributionVersion != "" {
		_, _ = fmt.Fprintf(p.out, "  version:          %s\n", f.OS.DistributionVersion)
	}
	if f.OS.Family != "" && f.OS.Family != f.Platform {
		_, _ = fmt.Fprintf(p.out, "  family:           %s\n", f.OS.Family)
	}

	if f.PackageManager == facts.NotFound {
		_, _ = red.Fprintf(p.out, "  package manager:  %s\n", f.PackageManager)
	} else {
		_, _ = green.Fprintf(p.out, "  package manager:  %s\n", f.PackageManager)
	}
	if len(f.PackageManagers) > 1 {
		_, _ = fmt.Fprintf(p.out, "  also installed:   %s\n", strings.Join(f.PackageManagers[1:], ", "))
	}

	for _, name := range f.CommandNames() {
		if f.Commands[name] {
			_, _ = green.Fprintf(p.out, "  + %s\n", name)
		} else {
			_, _ = red.Fprintf(p.out, "  - %s\n", name)
		}
	}
}

// PrintDrift prints the changes between two snapshots and returns how
// many were found.
func (p *Printer) PrintDrift(old, new *facts.Facts) int {
	changes := Drift(old, new)
	if len(changes) == 0 {
		p.PrintNoChanges()
		return 0
	}

	for _, change := range changes {
		p.printChange(change)
	}
	_, _ = fmt.Fprintf(p.out, "\nDrift: %d change(s).\n", len(changes))
	return len(changes)
}

func (p *Printer) printChange(change Change) {
	switch change.Action {
	case ActionAdd:
		_, _ = p.color(color.FgGreen).Fprintf(p.out, "  + %s = %s\n", change.Attribute, p.formatValue(change.New))
	case ActionRemove:
		_, _ = p.color(color.FgRed).Fprintf(p.out, "  - %s = %s\n", change.Attribute, p.formatValue(change.Old))
	default:
		oldStr, oldOk := change.Old.(string)
		newStr, newOk := change.New.(string)
		if oldOk && newOk {
			_, _ = p.color(color.FgYellow).Fprintf(p.out, "  ~ %s: ", change.Attribute)
			p.printTextDiff(oldStr, newStr)
			return
		}
		_, _ = p.color(color.FgYellow).Fprintf(p.out, "  ~ %s: %s => %s\n",
			change.Attribute,
			p.formatValue(change.Old),
			p.formatValue(change.New))
	}
}

// printTextDiff prints a character-level diff on one line, deletions as
// [-text-] and insertions as {+text+}.
func (p *Printer) printTextDiff(old, new string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(old, new, false))

	red := p.color(color.FgRed)
	green := p.color(color.FgGreen)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			_, _ = red.Fprintf(p.out, "[-%s-]", d.Text)
		case diffmatchpatch.DiffInsert:
			_, _ = green.Fprintf(p.out, "{+%s+}", d.Text)
		default:
			_, _ = fmt.Fprint(p.out, d.Text)
		}
	}
	_, _ = fmt.Fprintln(p.out)
}

func (p *Printer) formatValue(v interface{}) string {
	if v == nil {
		return "null"
	}
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// PrintNoChanges prints when two snapshots match
func (p *Printer) PrintNoChanges() {
	_, _ = p.color(color.FgGreen).Fprintln(p.out, "No drift. Host matches the previous report.")
}
