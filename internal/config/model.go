package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
)

// Model is the unified representation of all loaded sweep files.
type Model struct {
	Sweeps []*Sweep
}

// Sweep is the format-agnostic representation of a `sweep` block.
type Sweep struct {
	Name      string
	RunPrefix string
	Axes      sweep.Axes
	Command   sweep.CommandTemplate
	Submitter *Plugin
	Notifiers []*Plugin
}

// Plugin is a `submitter` or `notify` block: a type label and a body that is
// decoded later, once the module for that type is known.
type Plugin struct {
	Type  string
	Body  hcl.Body
	Range hcl.Range
}

// Plan converts the sweep into the enumerable form used by the runner.
func (s *Sweep) Plan() sweep.Plan {
	return sweep.Plan{
		Name:      s.Name,
		RunPrefix: s.RunPrefix,
		Axes:      s.Axes,
		Command:   s.Command,
	}
}

// Lookup returns the sweep with the given name.
func (m *Model) Lookup(name string) (*Sweep, bool) {
	for _, s := range m.Sweeps {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Select returns the named sweeps in the requested order, or every sweep in
// declaration order when names is empty.
func (m *Model) Select(names ...string) ([]*Sweep, error) {
	if len(names) == 0 {
		return m.Sweeps, nil
	}
	out := make([]*Sweep, 0, len(names))
	for _, n := range names {
		s, ok := m.Lookup(n)
		if !ok {
			return nil, &UnknownSweepError{Name: n}
		}
		out = append(out, s)
	}
	return out, nil
}

// UnknownSweepError is returned by Select for a name no file declares.
type UnknownSweepError struct {
	Name string
}

func (e *UnknownSweepError) Error() string {
	return fmt.Sprintf("no sweep named %q", e.Name)
}
