// Package loader implements the declarative entity/template loader from
// spec.md §4.5/§4.6: a directory of JSON template files, "extends"
// inheritance with "$key" override merge, and the hook-expression
// grammar ("@self", "%scope:component:field", "#scope:component:field")
// used to wire a spawned entity's fields to another entity's hooks.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"forgekernel/internal/core/ecs"
	"forgekernel/internal/core/ecs/value"
)

// templateFile is the on-disk shape of one *.json entity template.
type templateFile struct {
	Name       string                     `json:"name"`
	Extends    string                     `json:"extends,omitempty"`
	Abstract   bool                       `json:"abstract,omitempty"`
	Scene      *sceneSpec                 `json:"scene,omitempty"`
	Components map[string]json.RawMessage `json:"components,omitempty"`
}

type sceneSpec struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// Loader walks a directory of templates, resolves inheritance, and
// spawns the concrete (non-abstract) entities it finds into a Registry.
type Loader struct {
	Registry *ecs.Registry

	templates map[string]templateFile
	resolved  map[string]value.Value // name -> merged components object
	named     map[string]ecs.EntityID
}

// New builds a loader that spawns into r.
func New(r *ecs.Registry) *Loader {
	return &Loader{
		Registry:  r,
		templates: make(map[string]templateFile),
		resolved:  make(map[string]value.Value),
		named:     make(map[string]ecs.EntityID),
	}
}

// LoadDir walks path for *.json files, resolves every template's
// inheritance chain, and spawns one entity per non-abstract template,
// in sorted-name order so "#"/"%" expressions can reference an
// earlier-named entity deterministically. It returns the spawned ids.
func (l *Loader) LoadDir(path string) ([]ecs.EntityID, error) {
	if err := l.readAll(path); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(l.templates))
	for name, tf := range l.templates {
		if !tf.Abstract {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var spawned []ecs.EntityID
	for _, name := range names {
		id, err := l.instantiate(name)
		if err != nil {
			return spawned, err
		}
		spawned = append(spawned, id)
	}
	return spawned, nil
}

func (l *Loader) readAll(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		var tf templateFile
		if err := json.Unmarshal(raw, &tf); err != nil {
			return fmt.Errorf("loader: %s: %w", p, err)
		}
		if tf.Name == "" {
			tf.Name = strings.TrimSuffix(filepath.Base(p), ".json")
		}
		l.templates[tf.Name] = tf
		return nil
	})
}

// resolve returns name's fully merged components object, walking the
// extends chain and caching the result.
func (l *Loader) resolve(name string, seen map[string]bool) (value.Value, error) {
	if v, ok := l.resolved[name]; ok {
		return v, nil
	}
	if seen[name] {
		return value.Value{}, ecs.MalformedBytesErr("loader: extends cycle at " + name)
	}
	seen[name] = true

	tf, ok := l.templates[name]
	if !ok {
		return value.Value{}, ecs.MalformedBytesErr("loader: unknown template " + name)
	}
	own := componentsToValue(tf.Components)

	merged := own
	if tf.Extends != "" {
		parent, err := l.resolve(tf.Extends, seen)
		if err != nil {
			return value.Value{}, err
		}
		merged = mergeValue(parent, own)
	}
	l.resolved[name] = merged
	return merged, nil
}

func componentsToValue(components map[string]json.RawMessage) value.Value {
	obj := make(map[string]value.Value, len(components))
	for key, raw := range components {
		var v value.Value
		if err := v.UnmarshalJSON(raw); err != nil {
			continue
		}
		obj[key] = v
	}
	return value.Object(obj)
}

// instantiate spawns name's entity, applies its scene tag, and decodes
// every resolved component, resolving hook expressions along the way.
func (l *Loader) instantiate(name string) (ecs.EntityID, error) {
	merged, err := l.resolve(name, map[string]bool{})
	if err != nil {
		return ecs.InvalidEntityID, err
	}
	id := l.Registry.Spawn()
	l.named[name] = id

	tf := l.templates[name]
	if tf.Scene != nil {
		state, err := parseSceneState(tf.Scene.State)
		if err != nil {
			return id, err
		}
		if err := l.Registry.AddComponent(id, "scene", ecs.Scene{Name: tf.Scene.Name, State: state}); err != nil {
			return id, err
		}
	}

	if merged.Kind != value.KindObject {
		return id, nil
	}
	for compKey, compVal := range merged.Object {
		if err := l.instantiateComponent(id, name, ecs.ComponentType(compKey), compVal); err != nil {
			return id, err
		}
	}
	return id, nil
}

func parseSceneState(s string) (ecs.SceneState, error) {
	switch strings.ToUpper(s) {
	case "", "ACTIVE":
		return ecs.SceneActive, nil
	case "MAIN":
		return ecs.SceneMain, nil
	case "DISABLED":
		return ecs.SceneDisabled, nil
	default:
		return 0, ecs.MalformedBytesErr("loader: unknown scene state " + s)
	}
}

// instantiateComponent decodes one component's fields, pulling out any
// top-level field whose value is a hook expression before the
// mapstructure decode, then applying its effect (literal snapshot for
// "%", a queued live Binding for "#", this entity's own id for "@self").
func (l *Loader) instantiateComponent(id ecs.EntityID, ownerName string, key ecs.ComponentType, compVal value.Value) error {
	if compVal.Kind != value.KindObject {
		return nil
	}
	data := make(map[string]any, len(compVal.Object))
	type pendingBinding struct {
		field string
		src   ecs.HookRef
	}
	var pending []pendingBinding

	for field, v := range compVal.Object {
		if v.Kind != value.KindString {
			data[field] = v.ToAny()
			continue
		}
		prefix, rest, ok := parseHookExpr(v.Str)
		if !ok {
			data[field] = v.ToAny()
			continue
		}
		switch prefix {
		case '@':
			data[field] = int64(id)
		case '%':
			ref, err := l.resolveRef(ownerName, rest)
			if err != nil {
				return err
			}
			snap, err := l.snapshot(ref)
			if err != nil {
				return err
			}
			data[field] = snap
		case '#':
			ref, err := l.resolveRef(ownerName, rest)
			if err != nil {
				return err
			}
			pending = append(pending, pendingBinding{field: field, src: ref})
		}
	}

	if _, err := l.Registry.DecodeComponent(id, key, data); err != nil {
		return err
	}
	for _, p := range pending {
		l.Registry.Bindings.Add(&ecs.Binding{
			ID:       id,
			Priority: ecs.ErrPriority,
			Source:   p.src,
			Dest:     ecs.HookRef{Entity: id, Component: key, Field: p.field},
		})
	}
	return nil
}

// parseHookExpr recognizes the three hook-expression forms. "@self" has
// no trailing path; "%" and "#" expect "scope:component:field".
func parseHookExpr(s string) (prefix byte, rest string, ok bool) {
	if s == "@self" {
		return '@', "", true
	}
	if len(s) > 1 && (s[0] == '%' || s[0] == '#') {
		return s[0], s[1:], true
	}
	return 0, "", false
}

// resolveRef turns "scope:component:field" into a HookRef. scope is
// "self" (the entity currently being instantiated), "global" (a
// GlobalHooks name formed by rejoining component:field), or the name
// of another template already instantiated earlier in this load pass.
func (l *Loader) resolveRef(ownerName, rest string) (ecs.HookRef, error) {
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) != 3 {
		return ecs.HookRef{}, ecs.InvalidHookExpressionErr(rest, "expected scope:component:field")
	}
	scope, component, field := parts[0], parts[1], parts[2]
	if scope == "global" {
		return ecs.HookRef{Global: component + ":" + field}, nil
	}
	if scope == "self" {
		scope = ownerName
	}
	targetID, ok := l.named[scope]
	if !ok {
		return ecs.HookRef{}, ecs.InvalidHookExpressionErr(rest, "scope "+scope+" has not been instantiated yet")
	}
	return ecs.HookRef{Entity: targetID, Component: ecs.ComponentType(component), Field: field}, nil
}

func (l *Loader) snapshot(ref ecs.HookRef) (any, error) {
	if ref.Global != "" {
		return l.Registry.GlobalHooks.Get(ref.Global)
	}
	component, err := l.Registry.GetComponent(ref.Entity, ref.Component)
	if err != nil {
		return nil, err
	}
	ht, err := l.Registry.HookTableFor(ref.Component)
	if err != nil {
		return nil, err
	}
	return ecs.HookGet(component, ht, ref.Field)
}
