package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/sweepgrid/internal/config"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/fsutil"
	"github.com/specialistvlad/sweepgrid/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	// Environ supplies the variables exposed as `env` in sweep files.
	Environ func() []string
}

// NewLoader creates a loader that exposes the process environment.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// Load parses every .hcl file under paths. Directories are searched
// recursively; files are loaded whatever their extension.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ExpandPaths(".hcl", paths...)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Found sweep files.", "count", len(files), "files", files)

	parser := hclparse.NewParser()
	evalCtx := newEvalContext(l.environ())
	model := &config.Model{}

	var diags hcl.Diagnostics
	for _, path := range files {
		f, parseDiags := parser.ParseHCLFile(path)
		diags = append(diags, parseDiags...)
		if parseDiags.HasErrors() {
			continue
		}
		diags = append(diags, decodeFile(ctx, f, evalCtx, model)...)
	}
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to parse sweep files: %w", diags)
	}

	logger.Debug("Sweep files loaded.", "sweeps", len(model.Sweeps))
	return model, NewConverter(evalCtx), nil
}

// LoadBytes parses a single sweep file held in memory.
func (l *Loader) LoadBytes(ctx context.Context, filename string, src []byte) (*config.Model, config.Converter, error) {
	parser := hclparse.NewParser()
	evalCtx := newEvalContext(l.environ())
	model := &config.Model{}

	f, diags := parser.ParseHCL(src, filename)
	if !diags.HasErrors() {
		diags = append(diags, decodeFile(ctx, f, evalCtx, model)...)
	}
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	return model, NewConverter(evalCtx), nil
}

func (l *Loader) environ() []string {
	if l.Environ == nil {
		return os.Environ()
	}
	return l.Environ()
}

// decodeFile decodes one parsed file and appends its sweeps to model.
func decodeFile(ctx context.Context, f *hcl.File, evalCtx *hcl.EvalContext, model *config.Model) hcl.Diagnostics {
	logger := ctxlog.FromContext(ctx)

	var file schema.File
	diags := gohcl.DecodeBody(f.Body, evalCtx, &file)
	if diags.HasErrors() {
		return diags
	}

	for _, s := range file.Sweeps {
		if _, exists := model.Lookup(s.Name); exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate sweep",
				Detail:   fmt.Sprintf("A sweep named %q is already defined.", s.Name),
			})
			continue
		}
		translated, sweepDiags := translateSweep(s, evalCtx)
		diags = append(diags, sweepDiags...)
		if sweepDiags.HasErrors() {
			continue
		}
		logger.Debug("Sweep translated.", "sweep", translated.Name, "combinations", translated.Axes.Count())
		model.Sweeps = append(model.Sweeps, translated)
	}
	return diags
}
