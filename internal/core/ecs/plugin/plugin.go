// Package plugin implements dependency-ordered plugin loading: native
// Go plugins built with the standard library's plugin package, and
// Lua-scripted plugins hosted by gopher-lua (see lua_host.go). A native
// plugin exports an EntryPoint taking (registry, event manager, entity
// loader, config) and returning an instance; a Lua plugin instead
// defines an optional global init(config), and its instance is the VM.
package plugin

import (
	stdplugin "plugin"
	"sort"

	"forgekernel/internal/core/ecs"
	"forgekernel/internal/core/ecs/value"
)

// EntityLoader is the narrow surface a plugin's entry point needs from
// the entity-loader package, expressed as an interface here (rather
// than importing package loader) so plugin and loader have no import
// cycle between them.
type EntityLoader interface {
	LoadDir(path string) ([]ecs.EntityID, error)
}

// Instance is whatever state a plugin's entry point returns; the host
// keeps it only so Shutdown can be called symmetrically at teardown.
type Instance any

// Shutdownable is an optional interface a plugin Instance can implement
// to receive a symmetric teardown call when the host shuts down.
type Shutdownable interface {
	Shutdown() error
}

// EntryPoint is the exported symbol, named "ForgeKernelPlugin", every
// native plugin .so must expose.
type EntryPoint func(r *ecs.Registry, em *ecs.EventManager, loader EntityLoader, config value.Value) (Instance, error)

// Descriptor is a plugin's declared identity and load-order constraint,
// supplied by the caller of LoadAll before the entry point runs.
type Descriptor struct {
	Name         string
	Path         string // .so path, empty for a Lua-scripted plugin
	ScriptPath   string // .lua path, empty for a native plugin
	Dependencies []string
	Config       value.Value
}

// Host loads a set of descriptors in dependency order and keeps their
// resulting instances for later shutdown.
type Host struct {
	registry  *ecs.Registry
	events    *ecs.EventManager
	loader    EntityLoader
	instances map[string]Instance
	luaHost   *LuaHost
}

// NewHost builds a plugin host bound to r, em, and loader.
func NewHost(r *ecs.Registry, em *ecs.EventManager, loader EntityLoader) *Host {
	return &Host{
		registry:  r,
		events:    em,
		loader:    loader,
		instances: make(map[string]Instance),
		luaHost:   NewLuaHost(r, em, loader),
	}
}

// LoadAll topologically sorts descriptors by Dependencies and runs each
// entry point in that order, failing fast on a cycle or a missing
// dependency name.
func (h *Host) LoadAll(descriptors []Descriptor) error {
	ordered, err := topoSort(descriptors)
	if err != nil {
		return err
	}
	for _, d := range ordered {
		inst, err := h.load(d)
		if err != nil {
			return err
		}
		h.instances[d.Name] = inst
	}
	return nil
}

func (h *Host) load(d Descriptor) (Instance, error) {
	if d.ScriptPath != "" {
		return h.luaHost.Load(d.ScriptPath, d.Config)
	}
	p, err := stdplugin.Open(d.Path)
	if err != nil {
		return nil, ecs.MalformedBytesErr("plugin open: " + err.Error())
	}
	sym, err := p.Lookup("ForgeKernelPlugin")
	if err != nil {
		return nil, ecs.MalformedBytesErr("plugin missing ForgeKernelPlugin symbol: " + err.Error())
	}
	entry, ok := sym.(EntryPoint)
	if !ok {
		fn, ok := sym.(func(*ecs.Registry, *ecs.EventManager, EntityLoader, value.Value) (Instance, error))
		if !ok {
			return nil, ecs.MalformedBytesErr("plugin symbol has the wrong signature")
		}
		entry = fn
	}
	return entry(h.registry, h.events, h.loader, d.Config)
}

// Shutdown tears down the loaded instances named in order that implement
// Shutdownable, walking order from last to first. Instances not named in
// order are not shut down.
func (h *Host) Shutdown(order []string) error {
	for i := len(order) - 1; i >= 0; i-- {
		inst, ok := h.instances[order[i]]
		if !ok {
			continue
		}
		if s, ok := inst.(Shutdownable); ok {
			if err := s.Shutdown(); err != nil {
				return err
			}
		}
	}
	return nil
}

// topoSort orders descriptors so every dependency precedes its
// dependent, erroring on an unresolvable or cyclic graph.
func topoSort(descriptors []Descriptor) ([]Descriptor, error) {
	byName := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(descriptors))
	var order []Descriptor
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return ecs.MalformedBytesErr("plugin dependency cycle at " + name)
		}
		d, ok := byName[name]
		if !ok {
			return ecs.MalformedBytesErr("plugin " + name + " depends on unknown plugin")
		}
		state[name] = visiting
		deps := append([]string(nil), d.Dependencies...)
		sort.Strings(deps)
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = visited
		order = append(order, d)
		return nil
	}
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
