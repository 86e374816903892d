package ecs

// Zipper iterates the entities that carry every component type in Keys,
// skipping any entity the scene manager currently hides, the runtime
// counterpart of the teacher's query/builder.go multi-component filter
// narrowed to the spec's exact contract (no archetype bitset cache,
// no query-result memoization — out of scope here).
type Zipper struct {
	r    *Registry
	keys []ComponentType
}

// NewZipper builds a Zipper over keys. At least one key is required;
// iteration order is ascending entity id.
func NewZipper(r *Registry, keys ...ComponentType) *Zipper {
	return &Zipper{r: r, keys: keys}
}

// ForEach visits each matching, scene-visible entity in ascending id
// order, calling fn with that entity's id and its component values in
// the same order as Keys. fn returning false stops iteration early.
func (z *Zipper) ForEach(fn func(id EntityID, values []any) bool) {
	if len(z.keys) == 0 {
		return
	}
	z.r.mu.RLock()
	driver, ok := z.r.components[z.keys[0]]
	if !ok {
		z.r.mu.RUnlock()
		return
	}
	others := make([]*componentRecord, 0, len(z.keys)-1)
	for _, k := range z.keys[1:] {
		rec, ok := z.r.components[k]
		if !ok {
			z.r.mu.RUnlock()
			return
		}
		others = append(others, rec)
	}
	sceneRec := z.r.components[sceneComponentKey]
	z.r.mu.RUnlock()

	stopped := false
	driver.stores.forEach(func(id EntityID, first any) {
		if stopped {
			return
		}
		values := make([]any, len(z.keys))
		values[0] = first
		for i, rec := range others {
			v, ok := rec.stores.get(id)
			if !ok {
				return
			}
			values[i+1] = v
		}
		if sceneRec != nil {
			if tag, ok := sceneRec.stores.get(id); ok {
				if s, ok := tag.(*Scene); ok && !z.r.Scenes.Visible(s) {
					return
				}
			}
		}
		if !fn(id, values) {
			stopped = true
		}
	})
}

// sceneComponentKey is the conventional registration key for the Scene
// component; Zipper consults it to apply scene visibility during
// iteration without every caller remembering to check it themselves.
const sceneComponentKey ComponentType = "scene"

// RegisterSceneComponent registers the Scene tag type under the
// conventional key Zipper looks for. Call it once per registry at
// setup if scene filtering during iteration is desired.
func RegisterSceneComponent(r *Registry) {
	RegisterComponent[Scene](r, sceneComponentKey)
}

// ForEach2 is a typed convenience wrapper over Zipper for the common
// two-component case, avoiding the []any unwrap at every call site.
func ForEach2[A, B any](r *Registry, keyA, keyB ComponentType, fn func(id EntityID, a *A, b *B) bool) {
	z := NewZipper(r, keyA, keyB)
	z.ForEach(func(id EntityID, values []any) bool {
		a, _ := values[0].(*A)
		b, _ := values[1].(*B)
		return fn(id, a, b)
	})
}

// ForEach3 is the three-component analogue of ForEach2.
func ForEach3[A, B, C any](r *Registry, keyA, keyB, keyC ComponentType, fn func(id EntityID, a *A, b *B, c *C) bool) {
	z := NewZipper(r, keyA, keyB, keyC)
	z.ForEach(func(id EntityID, values []any) bool {
		a, _ := values[0].(*A)
		b, _ := values[1].(*B)
		c, _ := values[2].(*C)
		return fn(id, a, b, c)
	})
}
