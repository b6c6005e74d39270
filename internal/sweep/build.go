package sweep

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// CommandTemplate describes the training command run on every host.
type CommandTemplate struct {
	// Setup runs before the training script, joined with '&&'. Optional.
	Setup string
	// Script is the training configuration script, invoked with bash.
	Script string
}

// Plan is a fully resolved sweep, ready to be enumerated.
type Plan struct {
	Name      string
	RunPrefix string
	Axes      Axes
	Command   CommandTemplate
}

// Run is one combination with its derived identifiers.
type Run struct {
	Combination
	Name    string
	Command string
}

// RunName joins the prefix and the axis fields with underscores. The field
// order is fixed and differs from the enumeration order: PRNGKey comes before
// fwdquant. A prefix may carry its own trailing underscore; "int8_sweep" and
// "int8_sweep_" give the same name.
func RunName(prefix string, c Combination) string {
	prefix = strings.TrimSuffix(prefix, "_")
	parts := make([]string, 0, 11)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts,
		"remat", c.Remat,
		"useint8", c.Int8,
		"dtype", c.Dtype,
		"PRNGKey", c.PRNGKey,
		"fwdquant", c.FwdQuant,
	)
	return strings.Join(parts, "_")
}

// Command renders the shell command for one run. The script receives the
// axis values and the run name as positional arguments.
func Command(tmpl CommandTemplate, c Combination, runName string) string {
	script := shellquote.Join(
		"bash", tmpl.Script,
		c.Remat, c.Int8, c.Dtype, c.FwdQuant, c.PRNGKey,
		runName,
	)
	if tmpl.Setup == "" {
		return script
	}
	return tmpl.Setup + " && " + script
}

// Build derives the run name and command for a combination of the plan.
func Build(p Plan, c Combination) Run {
	name := RunName(p.RunPrefix, c)
	return Run{
		Combination: c,
		Name:        name,
		Command:     Command(p.Command, c, name),
	}
}

// Runs builds every run of the plan in enumeration order.
func Runs(p Plan) []Run {
	out := make([]Run, 0, p.Axes.Count())
	for c := range Enumerate(p.Axes) {
		out = append(out, Build(p, c))
	}
	return out
}

// StatusLine is the console line printed before a run is submitted.
func StatusLine(c Combination) string {
	return fmt.Sprintf("Running remat %s, int8 %s, dtype %s, fwdquant %s, PRNGKey %s",
		c.Remat, c.Int8, c.Dtype, c.FwdQuant, c.PRNGKey)
}
