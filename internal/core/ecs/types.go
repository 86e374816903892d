// Package ecs implements the core runtime: entity lifecycle, type-erased
// component storage, the event bus, the hook/binding engine, and the
// serialization and entity-translation layer described in SPEC_FULL.md.
//
// Game code, network code, and UI code are not part of this package —
// they are expressed as components and event handlers attached to
// entities, loaded at startup by the plugin and entity loader packages.
package ecs

import "time"

// EntityID is a dense, recyclable, non-negative integer. Entity 0 is valid.
type EntityID uint64

// InvalidEntityID is never returned by Spawn; it is only a sentinel for
// "no entity" in optional-entity fields.
const InvalidEntityID EntityID = ^EntityID(0)

// ComponentType is the unique string key a component type is registered
// under. It doubles as the event name for event types.
type ComponentType string

// Priority orders system execution and handler dispatch. Lower runs first.
type Priority int

// ErrPriority is the default priority used for diagnostic/error handlers,
// per SPEC_FULL.md §3: "ERR_PRIO=0, higher runs later."
const ErrPriority Priority = 0

// SceneState is the per-entity scene tag state.
type SceneState int

const (
	SceneActive   SceneState = iota // participates in iteration when its scene is enabled
	SceneMain                       // always enabled; exactly one MAIN scene is expected at setup
	SceneDisabled                   // hidden from iteration regardless of the active-scene list
)

func (s SceneState) String() string {
	switch s {
	case SceneActive:
		return "ACTIVE"
	case SceneMain:
		return "MAIN"
	case SceneDisabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// Tick is the monotonically increasing counter advanced once per tick.
type Tick uint64

// Now is a snapshot of the clock at a point in the tick, stable across
// an entire tick per SPEC_FULL.md §5 ordering guarantee (e): "the clock
// ticks last so now() is stable across a tick."
type Now struct {
	Tick  Tick
	Time  time.Time
	Delta time.Duration
}
