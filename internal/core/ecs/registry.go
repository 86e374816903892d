package ecs

import (
	"encoding/binary"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"forgekernel/internal/core/ecs/value"
)

// SystemFunc is one tick's worth of work for a registered system. now
// is the stable clock snapshot for this tick (SPEC_FULL.md §5 ordering
// guarantee (e)).
type SystemFunc func(r *Registry, now Now) error

// Guard optionally restricts a system to running only when it returns
// true, the hook the expr-lang-backed per-system condition in
// SPEC_FULL.md §4 plugs into. A nil Guard always runs.
type Guard func(r *Registry, now Now) (bool, error)

type systemEntry struct {
	name     string
	priority Priority
	fn       SystemFunc
	guard    Guard
}

// HandlerToken identifies an installed event handler for later removal
// by EventManager.Unsubscribe: a random 64-bit value taken from the
// first eight bytes of a google/uuid (version 4) UUID.
type HandlerToken uint64

func newToken() HandlerToken {
	u := uuid.New()
	return HandlerToken(binary.BigEndian.Uint64(u[:8]))
}

// Registry is the root of the runtime: entity lifecycle, type-erased
// component storage, system scheduling, scene visibility, live
// bindings, and the hook namespaces bindings resolve against.
type Registry struct {
	mu sync.RWMutex

	nextID   EntityID
	freeList []EntityID // FIFO: oldest-freed id reused first (spec.md §3)
	alive    []bool

	components map[ComponentType]*componentRecord
	typeIndex  map[reflect.Type]ComponentType

	systems []systemEntry

	pendingDestroy []EntityID

	shutdownRequested bool
	shutdownCode      int

	Bindings    *BindingManager
	Scenes      *SceneManager
	GlobalHooks *GlobalHooks
	Clock       *Clock
}

// NewRegistry builds an empty registry with its own clock, scene
// manager, binding manager, and global-hook namespace ready to use.
func NewRegistry() *Registry {
	return &Registry{
		components:  make(map[ComponentType]*componentRecord),
		typeIndex:   make(map[reflect.Type]ComponentType),
		Bindings:    NewBindingManager(),
		Scenes:      NewSceneManager(),
		GlobalHooks: NewGlobalHooks(),
		Clock:       NewClock(),
	}
}

// Spawn allocates an entity id, preferring the oldest entry on the free
// list (FIFO reuse, per spec.md §3's explicit reuse-order requirement)
// over minting a new one.
func (r *Registry) Spawn() EntityID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.freeList) > 0 {
		id := r.freeList[0]
		r.freeList = r.freeList[1:]
		r.alive[id] = true
		return id
	}
	id := r.nextID
	r.nextID++
	r.alive = append(r.alive, true)
	return id
}

// IsAlive reports whether id currently refers to a live entity.
func (r *Registry) IsAlive(id EntityID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(id) < len(r.alive) && r.alive[id]
}

// Destroy frees id, erasing every component slot it holds and dropping
// any binding it owns, then appends it to the FIFO free list.
func (r *Registry) Destroy(id EntityID) error {
	r.mu.Lock()
	if int(id) >= len(r.alive) || !r.alive[id] {
		r.mu.Unlock()
		return EntityNotFoundErr(id)
	}
	r.alive[id] = false
	for _, rec := range r.components {
		rec.stores.erase(id)
	}
	r.freeList = append(r.freeList, id)
	r.mu.Unlock()
	r.Bindings.RemoveOwnedBy(id)
	return nil
}

// RequestShutdown sets the flag the tick driver checks after finishing
// the current tick; the process should exit with code once it sees it
// (spec.md §6/§7: "the process exits with the integer carried by the
// final ShutdownEvent"). The current tick is never interrupted.
func (r *Registry) RequestShutdown(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.shutdownRequested {
		r.shutdownRequested = true
		r.shutdownCode = code
	}
}

// ShutdownRequested reports whether RequestShutdown has been called,
// and if so, the exit code it carried.
func (r *Registry) ShutdownRequested() (bool, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shutdownRequested, r.shutdownCode
}

// RequestDestroy defers id's destruction to the tick driver's deletion
// phase, so systems mid-iteration never see an entity vanish under
// them (spec.md §5 ordering: deletions happen after systems run).
func (r *Registry) RequestDestroy(id EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingDestroy = append(r.pendingDestroy, id)
}

// FlushDestroys processes every id queued by RequestDestroy since the
// last flush, in FIFO order, and is the deletion phase of a tick.
func (r *Registry) FlushDestroys() error {
	r.mu.Lock()
	pending := r.pendingDestroy
	r.pendingDestroy = nil
	r.mu.Unlock()
	for _, id := range pending {
		if err := r.Destroy(id); err != nil && !isNotFound(err) {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	e, ok := err.(*ECSError)
	return ok && e.Code == ErrEntityNotFound
}

// RegisterComponent registers T under key, building its type-erased
// store and hook table. Calling it twice for the same key replaces the
// prior registration (used by tests that need a fresh store per case).
func RegisterComponent[T any](r *Registry, key ComponentType) {
	var zero T
	t := reflect.TypeOf(zero)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[key] = &componentRecord{
		key:    key,
		goType: t,
		stores: newTypedStore[T](),
		hooks:  buildHookTable(t),
	}
	r.typeIndex[t] = key
}

func (r *Registry) record(key ComponentType) (*componentRecord, error) {
	rec, ok := r.components[key]
	if !ok {
		return nil, UnknownComponentErr(key)
	}
	return rec, nil
}

// AddComponent attaches value, whose concrete type must match the type
// T registered under key, to entity id.
func (r *Registry) AddComponent(id EntityID, key ComponentType, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) >= len(r.alive) || !r.alive[id] {
		return EntityNotFoundErr(id)
	}
	rec, err := r.record(key)
	if err != nil {
		return err
	}
	return rec.stores.set(id, value)
}

// DecodeComponent builds a new instance of key's registered Go type
// from data via mapstructure, attaches it to id, and returns the
// decoded pointer so a caller (the entity loader) can still queue
// bindings against its fields before the tick loop first reads it.
func (r *Registry) DecodeComponent(id EntityID, key ComponentType, data map[string]any) (any, error) {
	r.mu.Lock()
	rec, err := r.record(key)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	goType := rec.goType
	r.mu.Unlock()

	instance := reflect.New(goType)
	if err := mapstructure.Decode(data, instance.Interface()); err != nil {
		return nil, MalformedBytesErr("component decode for " + string(key) + ": " + err.Error())
	}
	if err := r.AddComponent(id, key, instance.Elem().Interface()); err != nil {
		return nil, err
	}
	return instance.Interface(), nil
}

// HookTableFor exposes the registered hook table for key, letting the
// entity loader resolve "%"/"#" hook expressions against the same
// field-name convention AddComponent and the binding engine use.
func (r *Registry) HookTableFor(key ComponentType) (*hookTable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, err := r.record(key)
	if err != nil {
		return nil, err
	}
	return rec.hooks, nil
}

// RemoveComponent detaches key from id, if present.
func (r *Registry) RemoveComponent(id EntityID, key ComponentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.record(key)
	if err != nil {
		return err
	}
	rec.stores.erase(id)
	return nil
}

// GetComponent returns a pointer to id's key component, or an error if
// id has no such component attached.
func (r *Registry) GetComponent(id EntityID, key ComponentType) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, err := r.record(key)
	if err != nil {
		return nil, err
	}
	v, ok := rec.stores.get(id)
	if !ok {
		return nil, EntityNotFoundErr(id).WithComponent(key)
	}
	return v, nil
}

// HasComponent reports whether id carries key without allocating an error.
func (r *Registry) HasComponent(id EntityID, key ComponentType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.components[key]
	if !ok {
		return false
	}
	return rec.stores.has(id)
}

// AliveCount returns the number of currently live entities.
func (r *Registry) AliveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.alive {
		if a {
			n++
		}
	}
	return n
}

// Count returns how many entities currently carry key.
func (r *Registry) Count(key ComponentType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.components[key]
	if !ok {
		return 0
	}
	return rec.stores.len()
}

// AddSystem installs fn at priority, executed in ascending-priority
// order each tick; an optional guard skips the call entirely when it
// returns false (used for the expr-lang per-system condition wiring).
func (r *Registry) AddSystem(name string, priority Priority, fn SystemFunc, guard Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systems = append(r.systems, systemEntry{name: name, priority: priority, fn: fn, guard: guard})
	sort.SliceStable(r.systems, func(i, j int) bool {
		return r.systems[i].priority < r.systems[j].priority
	})
}

// RunSystems executes every installed system in priority order,
// skipping any whose guard declines, and stops at the first error.
func (r *Registry) RunSystems(now Now) error {
	r.mu.RLock()
	entries := append([]systemEntry(nil), r.systems...)
	r.mu.RUnlock()
	for _, e := range entries {
		if e.guard != nil {
			ok, err := e.guard(r, now)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		if err := e.fn(r, now); err != nil {
			return err
		}
	}
	return nil
}

// resolveHook implements the resolver interface BindingManager.Apply
// needs: it turns a HookRef into a (get, set) closure pair bound to the
// referenced component field or global hook.
func (r *Registry) resolveHook(ref HookRef) (func() (any, error), func(any) error, error) {
	if ref.Global != "" {
		get := func() (any, error) { return r.GlobalHooks.Get(ref.Global) }
		set := func(v any) error { return r.GlobalHooks.Set(ref.Global, v) }
		return get, set, nil
	}
	r.mu.RLock()
	rec, ok := r.components[ref.Component]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, UnknownComponentErr(ref.Component)
	}
	get := func() (any, error) {
		r.mu.RLock()
		defer r.mu.RUnlock()
		v, ok := rec.stores.get(ref.Entity)
		if !ok {
			return nil, EntityNotFoundErr(ref.Entity).WithComponent(ref.Component)
		}
		return HookGet(v, rec.hooks, ref.Field)
	}
	set := func(v any) error {
		r.mu.RLock()
		component, ok := rec.stores.get(ref.Entity)
		r.mu.RUnlock()
		if !ok {
			return EntityNotFoundErr(ref.Entity).WithComponent(ref.Component)
		}
		return HookSet(component, rec.hooks, ref.Field, v)
	}
	return get, set, nil
}

// Snapshot serializes id's components into a structured-value object
// keyed by component type name, using the same field names a hook
// expression addresses.
func (r *Registry) Snapshot(id EntityID) (value.Value, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.alive) || !r.alive[id] {
		return value.Value{}, EntityNotFoundErr(id)
	}
	obj := make(map[string]value.Value)
	for key, rec := range r.components {
		v, ok := rec.stores.get(id)
		if !ok {
			continue
		}
		obj[string(key)] = structToValue(v)
	}
	return value.Object(obj), nil
}

// structToValue reflects over a component value's exported fields,
// reusing the same hook-name convention as buildHookTable so a
// round-tripped snapshot addresses the same keys a hook expression would.
func structToValue(component any) value.Value {
	rv := reflect.ValueOf(component)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return value.Null()
		}
		rv = rv.Elem()
	}
	return reflectToValue(rv)
}

func reflectToValue(rv reflect.Value) value.Value {
	switch rv.Kind() {
	case reflect.Struct:
		obj := make(map[string]value.Value)
		t := rv.Type()
		ht := buildHookTable(t)
		for name, idx := range ht.fields {
			obj[name] = reflectToValue(rv.FieldByIndex(idx))
		}
		return value.Object(obj)
	case reflect.String:
		return value.String(rv.String())
	case reflect.Bool:
		return value.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Int(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return value.Real(rv.Float())
	case reflect.Slice, reflect.Array:
		items := make([]value.Value, rv.Len())
		for i := range items {
			items[i] = reflectToValue(rv.Index(i))
		}
		return value.Array(items...)
	case reflect.Map:
		obj := make(map[string]value.Value)
		for _, k := range rv.MapKeys() {
			obj[keyString(k)] = reflectToValue(rv.MapIndex(k))
		}
		return value.Object(obj)
	default:
		return value.Null()
	}
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return ""
}
