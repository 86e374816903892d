package loader

import "forgekernel/internal/core/ecs/value"

// mergeValue deep-merges child over parent: object keys present in
// child override parent's key-by-key, recursing into nested objects;
// any other kind (array, scalar) in child replaces parent wholesale.
//
// A child object key prefixed with "$" (spec.md §4.6) forces a full
// replace of that key even when both sides are objects, instead of the
// default recursive per-field merge — the override escape hatch a
// template instance needs to wholesale replace a parent's nested
// object (e.g. $position to replace rather than field-merge position).
func mergeValue(parent, child value.Value) value.Value {
	if child.IsNull() {
		return parent
	}
	if parent.IsNull() {
		return stripOverrideMarkers(child)
	}
	if parent.Kind != value.KindObject || child.Kind != value.KindObject {
		return stripOverrideMarkers(child)
	}
	merged := make(map[string]value.Value, len(parent.Object)+len(child.Object))
	for k, v := range parent.Object {
		merged[k] = v
	}
	for k, v := range child.Object {
		key := k
		forceReplace := false
		if len(k) > 0 && k[0] == '$' {
			key = k[1:]
			forceReplace = true
		}
		if forceReplace {
			merged[key] = stripOverrideMarkers(v)
			continue
		}
		if existing, ok := merged[key]; ok {
			merged[key] = mergeValue(existing, v)
		} else {
			merged[key] = stripOverrideMarkers(v)
		}
	}
	return value.Object(merged)
}

// stripOverrideMarkers removes any leftover "$" key prefixes from a
// value that is being adopted wholesale (no parent to merge against),
// so a template with no ancestor still round-trips to plain field names.
func stripOverrideMarkers(v value.Value) value.Value {
	if v.Kind != value.KindObject {
		return v
	}
	out := make(map[string]value.Value, len(v.Object))
	for k, e := range v.Object {
		key := k
		if len(k) > 0 && k[0] == '$' {
			key = k[1:]
		}
		out[key] = stripOverrideMarkers(e)
	}
	return value.Object(out)
}
