// Package schema holds the gohcl decoding targets for sweep files.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File is the top-level structure of a sweep file.
type File struct {
	Sweeps []*Sweep `hcl:"sweep,block"`
}

// Sweep represents a `sweep` block: the axes to enumerate, the command run
// for every combination and where the runs are submitted.
type Sweep struct {
	Name      string    `hcl:"name,label"`
	RunPrefix string    `hcl:"run_prefix,optional"`
	Axes      *Axes     `hcl:"axes,block"`
	Command   *Command  `hcl:"command,block"`
	Submitter *Plugin   `hcl:"submitter,block"`
	Notifiers []*Plugin `hcl:"notify,block"`
}

// Axes keeps the raw expressions so that each axis can be evaluated and
// converted to strings on its own, with errors pointing at the attribute.
type Axes struct {
	Remat    hcl.Expression `hcl:"remat"`
	Int8     hcl.Expression `hcl:"int8"`
	Dtype    hcl.Expression `hcl:"dtype"`
	FwdQuant hcl.Expression `hcl:"fwd_quant"`
	PRNGKey  hcl.Expression `hcl:"prng_key"`
}

// Command is the `command` block of a sweep.
type Command struct {
	Setup  string `hcl:"setup,optional"`
	Script string `hcl:"script"`
}

// Plugin is a `submitter` or `notify` block. The body is decoded later by
// the module registered for Type.
type Plugin struct {
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}
