package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/sweepgrid/internal/config"
	"github.com/specialistvlad/sweepgrid/internal/schema"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateSweep converts the decoded sweep block into the agnostic model.
func translateSweep(s *schema.Sweep, evalCtx *hcl.EvalContext) (*config.Sweep, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	if s.Axes == nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing axes block",
			Detail:   fmt.Sprintf("Sweep %q must declare an axes block.", s.Name),
		})
	}
	if s.Command == nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing command block",
			Detail:   fmt.Sprintf("Sweep %q must declare a command block.", s.Name),
		})
	}
	if s.Submitter == nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing submitter block",
			Detail:   fmt.Sprintf("Sweep %q must declare a submitter block.", s.Name),
		})
	}
	if diags.HasErrors() {
		return nil, diags
	}

	out := &config.Sweep{
		Name:      s.Name,
		RunPrefix: s.RunPrefix,
		Command: sweep.CommandTemplate{
			Setup:  s.Command.Setup,
			Script: s.Command.Script,
		},
		Submitter: translatePlugin(s.Submitter),
	}
	if out.RunPrefix == "" {
		out.RunPrefix = s.Name
	}
	for _, n := range s.Notifiers {
		out.Notifiers = append(out.Notifiers, translatePlugin(n))
	}

	var axisDiags hcl.Diagnostics
	out.Axes.Remat, axisDiags = axisValues("remat", s.Axes.Remat, evalCtx)
	diags = append(diags, axisDiags...)
	out.Axes.Int8, axisDiags = axisValues("int8", s.Axes.Int8, evalCtx)
	diags = append(diags, axisDiags...)
	out.Axes.Dtype, axisDiags = axisValues("dtype", s.Axes.Dtype, evalCtx)
	diags = append(diags, axisDiags...)
	out.Axes.FwdQuant, axisDiags = axisValues("fwd_quant", s.Axes.FwdQuant, evalCtx)
	diags = append(diags, axisDiags...)
	out.Axes.PRNGKey, axisDiags = axisValues("prng_key", s.Axes.PRNGKey, evalCtx)
	diags = append(diags, axisDiags...)

	if diags.HasErrors() {
		return nil, diags
	}
	return out, diags
}

func translatePlugin(p *schema.Plugin) *config.Plugin {
	return &config.Plugin{
		Type:  p.Type,
		Body:  p.Body,
		Range: p.Body.MissingItemRange(),
	}
}

// axisValues evaluates an axis expression, which must produce a list, tuple
// or set of primitives, and converts every element to its string form.
func axisValues(name string, expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, hcl.Diagnostics) {
	rng := expr.Range()
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}

	ty := val.Type()
	if val.IsNull() || !(ty.IsListType() || ty.IsTupleType() || ty.IsSetType()) {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid axis",
			Detail:   fmt.Sprintf("Axis %q must be a list of values, got %s.", name, ty.FriendlyName()),
			Subject:  &rng,
		}}
	}
	if !val.IsWhollyKnown() {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid axis",
			Detail:   fmt.Sprintf("Axis %q depends on a value that is not known.", name),
			Subject:  &rng,
		}}
	}

	out := make([]string, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		str, err := convert.Convert(elem, cty.String)
		if err != nil || str.IsNull() {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid axis value",
				Detail:   fmt.Sprintf("Axis %q values must be strings, numbers or bools; found %s.", name, elem.Type().FriendlyName()),
				Subject:  &rng,
			}}
		}
		out = append(out, str.AsString())
	}
	return out, nil
}
