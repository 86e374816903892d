package ecs

import (
	"reflect"
	"strings"
)

// Hookable lets a component type override the default reflect-based
// field lookup with hand-written accessors, the same escape hatch the
// teacher's Lua bridge reserves for types that need custom conversion
// (lua_bridge.go's special-cased time.Duration/time.Time handling).
type Hookable interface {
	HookGet(field string) (any, bool)
	HookSet(field string, value any) error
}

// hookTable maps a component type's field names (its "hooks") to the
// reflect path needed to read or write them by name, the Go analogue
// of the header-generated field-accessor tables in the original
// engine. Built once per registered type via buildHookTable.
type hookTable struct {
	fields map[string][]int
}

// buildHookTable walks t's exported fields. A field tagged `hook:"x"`
// is exposed as "x"; an untagged exported field is exposed under its
// lowercased name, mirroring the json-tag convention the teacher's
// types.go already uses for the same purpose (name-addressable fields
// for a non-Go caller, there JSON, here a hook expression).
func buildHookTable(t reflect.Type) *hookTable {
	ht := &hookTable{fields: make(map[string][]int)}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ht
	}
	walkHookFields(t, nil, ht)
	return ht
}

func walkHookFields(t reflect.Type, prefix []int, ht *hookTable) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		idx := append(append([]int{}, prefix...), i)
		name := f.Tag.Get("hook")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		ht.fields[name] = idx
	}
}

// has reports whether name is a known hook on this table.
func (h *hookTable) has(name string) bool {
	_, ok := h.fields[name]
	return ok
}

// names lists every hook field, for diagnostics and plugin introspection.
func (h *hookTable) names() []string {
	out := make([]string, 0, len(h.fields))
	for n := range h.fields {
		out = append(out, n)
	}
	return out
}

// fieldValue returns an addressable reflect.Value for name within the
// component instance pointed to by ptr (must be a non-nil pointer to
// the registered struct type).
func (h *hookTable) fieldValue(ptr any, name string) (reflect.Value, error) {
	idx, ok := h.fields[name]
	if !ok {
		return reflect.Value{}, InvalidHookErr("", name)
	}
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, MalformedBytesErr("hook target must be a non-nil pointer")
	}
	return v.Elem().FieldByIndex(idx), nil
}

// HookGet reads field name out of component, preferring a Hookable
// implementation over reflection when the component provides one.
func HookGet(component any, ht *hookTable, field string) (any, error) {
	if hk, ok := component.(Hookable); ok {
		v, ok := hk.HookGet(field)
		if !ok {
			return nil, InvalidHookErr("", field)
		}
		return v, nil
	}
	fv, err := ht.fieldValue(component, field)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

// HookSet writes value into field name on component, preferring a
// Hookable implementation over reflection when available.
func HookSet(component any, ht *hookTable, field string, value any) error {
	if hk, ok := component.(Hookable); ok {
		return hk.HookSet(field, value)
	}
	fv, err := ht.fieldValue(component, field)
	if err != nil {
		return err
	}
	if !fv.CanSet() {
		return InvalidHookErr("", field)
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(fv.Type()) {
		if rv.Type().ConvertibleTo(fv.Type()) {
			rv = rv.Convert(fv.Type())
		} else {
			return TypeMismatchErr("", field)
		}
	}
	fv.Set(rv)
	return nil
}

// CopyInto copies src into *dst, the opaque-value analogue of a plain
// assignment, converting src when it is convertible but not assignable.
// The binding engine does not call it; bindings write through HookSet.
func CopyInto(dst any, src any) error {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return MalformedBytesErr("CopyInto destination must be a non-nil pointer")
	}
	sv := reflect.ValueOf(src)
	elem := dv.Elem()
	if !sv.Type().AssignableTo(elem.Type()) {
		if sv.Type().ConvertibleTo(elem.Type()) {
			sv = sv.Convert(elem.Type())
		} else {
			return TypeMismatchErr("", "")
		}
	}
	elem.Set(sv)
	return nil
}

// globalHook is a named accessor pair registered outside any single
// component instance, resolving the "#scope:..." global hook-expression
// form (spec.md Scenario C's "#global:leader.pos:value").
type globalHook struct {
	get func() (any, bool)
	set func(any) error
}

// GlobalHooks is a name-keyed registry of globalHook accessors, separate
// from any ComponentType since a global hook is not tied to a single
// entity's component slot (e.g. "the current leader's position").
type GlobalHooks struct {
	entries map[string]globalHook
}

func NewGlobalHooks() *GlobalHooks {
	return &GlobalHooks{entries: make(map[string]globalHook)}
}

// Register installs name with the given getter/setter pair. A nil
// setter makes the hook read-only.
func (g *GlobalHooks) Register(name string, get func() (any, bool), set func(any) error) {
	g.entries[name] = globalHook{get: get, set: set}
}

// Get resolves name's current value.
func (g *GlobalHooks) Get(name string) (any, error) {
	e, ok := g.entries[name]
	if !ok {
		return nil, InvalidHookExpressionErr(name, "no global hook registered under this name")
	}
	v, ok := e.get()
	if !ok {
		return nil, InvalidHookExpressionErr(name, "global hook has no current value")
	}
	return v, nil
}

// Set writes value through name's setter.
func (g *GlobalHooks) Set(name string, value any) error {
	e, ok := g.entries[name]
	if !ok {
		return InvalidHookExpressionErr(name, "no global hook registered under this name")
	}
	if e.set == nil {
		return InvalidHookExpressionErr(name, "global hook is read-only")
	}
	return e.set(value)
}
