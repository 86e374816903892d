package ecs

import "sync"

// EntityTranslator maps entity ids between a local Registry's numbering
// and a foreign numbering space (a save file written at a different
// time, or a remote peer's own id allocation) as one bidirectional
// table. It is standalone: nothing in the registry, the event manager
// or the codec calls it, and it does not rewrite entity ids inside
// encoded components or events.
type EntityTranslator struct {
	mu         sync.RWMutex
	foreignToLocal map[EntityID]EntityID
	localToForeign map[EntityID]EntityID
}

// NewEntityTranslator returns an empty, ready-to-use translator.
func NewEntityTranslator() *EntityTranslator {
	return &EntityTranslator{
		foreignToLocal: make(map[EntityID]EntityID),
		localToForeign: make(map[EntityID]EntityID),
	}
}

// Bind records that foreign refers to the same logical entity as local,
// overwriting any prior binding for either side.
func (t *EntityTranslator) Bind(foreign, local EntityID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prevLocal, ok := t.foreignToLocal[foreign]; ok {
		delete(t.localToForeign, prevLocal)
	}
	if prevForeign, ok := t.localToForeign[local]; ok {
		delete(t.foreignToLocal, prevForeign)
	}
	t.foreignToLocal[foreign] = local
	t.localToForeign[local] = foreign
}

// ToLocal resolves a foreign id to its local entity, if bound.
func (t *EntityTranslator) ToLocal(foreign EntityID) (EntityID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.foreignToLocal[foreign]
	return id, ok
}

// ToForeign resolves a local entity to its foreign id, if bound.
func (t *EntityTranslator) ToForeign(local EntityID) (EntityID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.localToForeign[local]
	return id, ok
}

// Unbind drops any binding for local, used when the local entity is
// destroyed so stale foreign references resolve to "not found" instead
// of a reused id.
func (t *EntityTranslator) Unbind(local EntityID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if foreign, ok := t.localToForeign[local]; ok {
		delete(t.foreignToLocal, foreign)
		delete(t.localToForeign, local)
	}
}

// Len reports how many bindings are currently tracked.
func (t *EntityTranslator) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.localToForeign)
}
