package registry

import (
	"sort"

	"github.com/specialistvlad/bindforge/internal/archive"
	"github.com/specialistvlad/bindforge/internal/artifact"
	"github.com/specialistvlad/bindforge/internal/fetch"
	"github.com/specialistvlad/bindforge/internal/invoke"
)

// Module is the interface that all action modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Capabilities are the side-effecting services an action may use.
type Capabilities struct {
	Downloader fetch.Downloader
	Extractor  archive.Extractor
	Invoker    invoke.Invoker
	Cache      *artifact.Cache
}

// Registry holds all the registered action kinds for a single application
// instance.
type Registry struct {
	actions map[string]*RegisteredAction
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		actions: make(map[string]*RegisteredAction),
	}
}

// Action returns the registered action for kind.
func (r *Registry) Action(kind string) (*RegisteredAction, bool) {
	a, ok := r.actions[kind]
	return a, ok
}

// Kinds returns the registered action kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.actions))
	for k := range r.actions {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
