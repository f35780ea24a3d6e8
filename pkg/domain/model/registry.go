package model

import (
	"sort"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
)

// PlaybookRegistry holds the loaded playbook definitions for the whole
// process. It is read-mostly: loaded at startup and replaced wholesale
// on admin reload. Reads take no lock; Replace atomically swaps the
// entire map so readers never observe a partially-updated playbook.
type PlaybookRegistry struct {
	playbooks atomic.Pointer[map[string]*Playbook]
}

// NewPlaybookRegistry creates an empty PlaybookRegistry
func NewPlaybookRegistry() *PlaybookRegistry {
	r := &PlaybookRegistry{}
	empty := make(map[string]*Playbook)
	r.playbooks.Store(&empty)
	return r
}

// Replace swaps the registry contents with the given playbooks.
// Later entries with the same ID win.
func (r *PlaybookRegistry) Replace(playbooks []*Playbook) {
	next := make(map[string]*Playbook, len(playbooks))
	for _, p := range playbooks {
		next[p.Metadata.ID] = p
	}
	r.playbooks.Store(&next)
}

// Get retrieves a playbook by ID
func (r *PlaybookRegistry) Get(id string) (*Playbook, error) {
	current := *r.playbooks.Load()
	p, ok := current[id]
	if !ok {
		return nil, goerr.Wrap(ErrPlaybookNotFound, "playbook not registered",
			goerr.V("playbook_id", id))
	}
	return p, nil
}

// List returns all registered playbooks sorted by ID
func (r *PlaybookRegistry) List() []*Playbook {
	current := *r.playbooks.Load()
	result := make([]*Playbook, 0, len(current))
	for _, p := range current {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Metadata.ID < result[j].Metadata.ID
	})
	return result
}

// Len returns the number of registered playbooks
func (r *PlaybookRegistry) Len() int {
	return len(*r.playbooks.Load())
}
