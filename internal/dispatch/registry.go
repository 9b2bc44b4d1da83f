// Package dispatch resolves operation names to typed messages and runs
// the request/response cycle of one connection: encode, write, decode,
// then apply whatever session mutations the response carried.
package dispatch

import (
	"fmt"
	"sort"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/message"
)

// Registry is the immutable operation table. It is constructed once and
// injected; nothing mutates it afterwards.
type Registry struct {
	byName map[string]message.Entry
}

// NewRegistry builds a registry from the given entries. A later entry
// replaces an earlier one with the same name.
func NewRegistry(entries []message.Entry) *Registry {
	byName := make(map[string]message.Entry, len(entries))
	for _, entry := range entries {
		byName[entry.Name] = entry
	}
	return &Registry{byName: byName}
}

// DefaultRegistry builds the registry over the full message table.
func DefaultRegistry() *Registry {
	return NewRegistry(message.Entries())
}

// Resolve returns a fresh message for the named operation. Resolution is
// a pure table lookup and performs no I/O.
func (r *Registry) Resolve(name string) (message.Message, error) {
	entry, ok := r.byName[name]
	if !ok {
		return nil, errs.New("dispatch.resolve", errs.CodeUnknownOperation,
			errs.WithMessage(fmt.Sprintf("operation %q has no registered message", name)))
	}
	return entry.New(), nil
}

// Names returns the registered operation names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered operations.
func (r *Registry) Len() int { return len(r.byName) }
