package ecs

import "sync"

// Scene is the per-entity scene-membership component. An entity with no
// Scene component is always iterated, matching spec.md's "untagged
// entities are always visible" rule.
type Scene struct {
	Name  string
	State SceneState
}

// SceneManager tracks which scene names are currently active. It is
// deliberately independent of any entity's Scene component: switching
// the active scene never rewrites existing components (see
// SPEC_FULL.md §12, the Open Question this resolves), it only changes
// which ACTIVE-tagged entities the Zipper is willing to yield.
type SceneManager struct {
	mu     sync.RWMutex
	active map[string]bool
}

// NewSceneManager starts with no active scenes; MAIN-tagged and
// untagged entities are visible regardless.
func NewSceneManager() *SceneManager {
	return &SceneManager{active: make(map[string]bool)}
}

// SetCurrentScene marks name active without deactivating any other
// scene. Multiple scenes may be simultaneously active (e.g. a paused
// gameplay scene plus an overlay menu scene).
func (m *SceneManager) SetCurrentScene(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[name] = true
}

// ClearCurrentScene deactivates name.
func (m *SceneManager) ClearCurrentScene(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, name)
}

// IsActive reports whether name is currently active.
func (m *SceneManager) IsActive(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[name]
}

// Visible reports whether an entity carrying the given Scene tag should
// be yielded by iteration right now. A nil tag (no Scene component)
// and a SceneMain tag are always visible; a SceneDisabled tag never is;
// a SceneActive tag is visible only while its name is active.
func (m *SceneManager) Visible(tag *Scene) bool {
	if tag == nil {
		return true
	}
	switch tag.State {
	case SceneMain:
		return true
	case SceneDisabled:
		return false
	case SceneActive:
		return m.IsActive(tag.Name)
	default:
		return false
	}
}
