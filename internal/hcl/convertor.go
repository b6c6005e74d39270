package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct {
	evalCtx *hcl.EvalContext
}

// NewConverter creates a converter that evaluates plugin bodies with evalCtx.
func NewConverter(evalCtx *hcl.EvalContext) *Converter {
	return &Converter{evalCtx: evalCtx}
}

// DecodeBody decodes a plugin body into target, a pointer to a struct with
// `hcl` tags. Fields the body omits keep the value target already holds, so
// modules set their defaults before decoding.
func (c *Converter) DecodeBody(ctx context.Context, body hcl.Body, target any) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding plugin body.", "target", target)

	if diags := gohcl.DecodeBody(body, c.evalCtx, target); diags.HasErrors() {
		return diags
	}
	return nil
}
