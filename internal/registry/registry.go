package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/specialistvlad/sweepgrid/internal/sweep"
)

// Module is the interface that all modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Notifier observes sweep events and is closed when the sweep ends.
type Notifier interface {
	sweep.Observer
	Close() error
}

// Deps are the app-level resources handed to module constructors.
type Deps struct {
	// Out receives anything a module prints for the user, such as the
	// output of an external submission tool.
	Out io.Writer
}

// RegisteredSubmitter builds a sweep.Submitter from a decoded input struct.
type RegisteredSubmitter struct {
	// NewInput returns a pointer to the input struct, with defaults set.
	NewInput func() any
	New      func(ctx context.Context, deps Deps, input any) (sweep.Submitter, error)
}

// RegisteredNotifier builds a Notifier from a decoded input struct.
type RegisteredNotifier struct {
	NewInput func() any
	New      func(ctx context.Context, deps Deps, input any) (Notifier, error)
}

// Registry holds the submitter and notifier constructors of one App.
type Registry struct {
	submitters map[string]*RegisteredSubmitter
	notifiers  map[string]*RegisteredNotifier
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		submitters: make(map[string]*RegisteredSubmitter),
		notifiers:  make(map[string]*RegisteredNotifier),
	}
}

// RegisterSubmitter registers the constructor for a submitter type.
func (r *Registry) RegisterSubmitter(typ string, s *RegisteredSubmitter) {
	if _, exists := r.submitters[typ]; exists {
		panic(fmt.Sprintf("submitter type '%s' already registered", typ))
	}
	slog.Debug("Registering submitter.", "type", typ)
	r.submitters[typ] = s
}

// RegisterNotifier registers the constructor for a notifier type.
func (r *Registry) RegisterNotifier(typ string, n *RegisteredNotifier) {
	if _, exists := r.notifiers[typ]; exists {
		panic(fmt.Sprintf("notifier type '%s' already registered", typ))
	}
	slog.Debug("Registering notifier.", "type", typ)
	r.notifiers[typ] = n
}

// SubmitterTypes lists the registered submitter types in sorted order.
func (r *Registry) SubmitterTypes() []string {
	return sortedKeys(r.submitters)
}

// NotifierTypes lists the registered notifier types in sorted order.
func (r *Registry) NotifierTypes() []string {
	return sortedKeys(r.notifiers)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
