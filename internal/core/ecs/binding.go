package ecs

import "sort"

// HookRef addresses one hooked field: either a component field on a
// specific entity, or a named global hook. Global takes precedence
// when set (the loader fills it from the "global" scope of a
// "%"/"#" expression as "component:field"); otherwise Entity,
// Component, and Field select a per-entity component hook.
type HookRef struct {
	Global    string
	Entity    EntityID
	Component ComponentType
	Field     string
}

// Binding copies Source's current value into Dest every tick it runs,
// optionally passed through Transform first. This is the runtime
// counterpart of the hook-expression grammar's "#" live binding
// (spec.md §4.4); the copy is one-way, from Source to Dest. The "%"
// form is a one-time snapshot taken by the loader and creates no Binding.
type Binding struct {
	ID        EntityID // owning entity, for bulk removal on Destroy
	Priority  Priority
	Source    HookRef
	Dest      HookRef
	Transform func(any) any
}

// BindingManager holds the active binding set and applies it once per
// tick, before systems run (spec.md §5 ordering: "bindings, then
// systems").
type BindingManager struct {
	bindings []*Binding
	nextSlot EntityID
}

func NewBindingManager() *BindingManager {
	return &BindingManager{}
}

// Add installs b, keeping the set ordered by Priority. b.ID is what
// RemoveOwnedBy matches to tear it down in bulk when its owning entity
// is destroyed.
func (m *BindingManager) Add(b *Binding) {
	m.bindings = append(m.bindings, b)
	sort.SliceStable(m.bindings, func(i, j int) bool {
		return m.bindings[i].Priority < m.bindings[j].Priority
	})
}

// RemoveOwnedBy drops every binding owned by id, called when id is
// destroyed so stale bindings do not reference a freed slot.
func (m *BindingManager) RemoveOwnedBy(id EntityID) {
	kept := m.bindings[:0]
	for _, b := range m.bindings {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	m.bindings = kept
}

// Len reports the number of active bindings.
func (m *BindingManager) Len() int {
	return len(m.bindings)
}

// resolver is the narrow interface binding application needs from the
// registry, kept here (rather than importing *Registry directly) so
// this file has no forward dependency on registry.go's layout.
type resolver interface {
	resolveHook(ref HookRef) (get func() (any, error), set func(any) error, err error)
}

// Apply runs every binding in priority order against r and returns the
// first error encountered (a binding referencing a destroyed entity or
// unregistered hook) unchanged; bindings after it do not run.
func (m *BindingManager) Apply(r resolver) error {
	for _, b := range m.bindings {
		get, _, err := r.resolveHook(b.Source)
		if err != nil {
			return err
		}
		_, set, err := r.resolveHook(b.Dest)
		if err != nil {
			return err
		}
		v, err := get()
		if err != nil {
			return err
		}
		if b.Transform != nil {
			v = b.Transform(v)
		}
		if err := set(v); err != nil {
			return err
		}
	}
	return nil
}
