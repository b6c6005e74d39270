package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/sweepgrid/internal/config"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
)

// Validate checks that every plugin type referenced by the model has a
// registered module. All problems are reported together.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, s := range model.Sweeps {
		if s.Submitter != nil {
			if _, ok := r.submitters[s.Submitter.Type]; !ok {
				errs = append(errs, fmt.Sprintf("sweep '%s': unknown submitter type '%s'", s.Name, s.Submitter.Type))
			}
		}
		for _, n := range s.Notifiers {
			if _, ok := r.notifiers[n.Type]; !ok {
				errs = append(errs, fmt.Sprintf("sweep '%s': unknown notifier type '%s'", s.Name, n.Type))
			}
		}
		if s.Axes.Count() == 0 {
			logger.Warn("Sweep has an empty axis and will submit nothing.", "sweep", s.Name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
