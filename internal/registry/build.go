package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/sweepgrid/internal/config"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
)

// Submitter decodes a submitter block and constructs the submitter.
func (r *Registry) Submitter(ctx context.Context, p *config.Plugin, conv config.Converter, deps Deps) (sweep.Submitter, error) {
	reg, ok := r.submitters[p.Type]
	if !ok {
		return nil, fmt.Errorf("unknown submitter type %q (registered: %v)", p.Type, r.SubmitterTypes())
	}
	input := reg.NewInput()
	if err := conv.DecodeBody(ctx, p.Body, input); err != nil {
		return nil, fmt.Errorf("submitter %q: %w", p.Type, err)
	}
	ctxlog.FromContext(ctx).Debug("Constructing submitter.", "type", p.Type)
	s, err := reg.New(ctx, deps, input)
	if err != nil {
		return nil, fmt.Errorf("submitter %q: %w", p.Type, err)
	}
	return s, nil
}

// DefaultSubmitter constructs a submitter from its input defaults alone,
// without a configuration block.
func (r *Registry) DefaultSubmitter(ctx context.Context, typ string, deps Deps) (sweep.Submitter, error) {
	reg, ok := r.submitters[typ]
	if !ok {
		return nil, fmt.Errorf("unknown submitter type %q (registered: %v)", typ, r.SubmitterTypes())
	}
	return reg.New(ctx, deps, reg.NewInput())
}

// Notifier decodes a notify block and constructs the notifier.
func (r *Registry) Notifier(ctx context.Context, p *config.Plugin, conv config.Converter, deps Deps) (Notifier, error) {
	reg, ok := r.notifiers[p.Type]
	if !ok {
		return nil, fmt.Errorf("unknown notifier type %q (registered: %v)", p.Type, r.NotifierTypes())
	}
	input := reg.NewInput()
	if err := conv.DecodeBody(ctx, p.Body, input); err != nil {
		return nil, fmt.Errorf("notifier %q: %w", p.Type, err)
	}
	ctxlog.FromContext(ctx).Debug("Constructing notifier.", "type", p.Type)
	n, err := reg.New(ctx, deps, input)
	if err != nil {
		return nil, fmt.Errorf("notifier %q: %w", p.Type, err)
	}
	return n, nil
}
