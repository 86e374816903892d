package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"forgekernel/internal/core/ecs"
	"forgekernel/internal/core/ecs/value"
)

// LuaHost runs scripted plugins under gopher-lua, the scripting VM the
// teacher's own lua package already depends on (lua_bridge.go). Each
// script gets a sandboxed global table exposing just enough of the
// registry and event manager to spawn entities, attach components by
// name, and subscribe to events — the scripting analogue of the native
// EntryPoint contract.
type LuaHost struct {
	registry *ecs.Registry
	events   *ecs.EventManager
	loader   EntityLoader
}

func NewLuaHost(r *ecs.Registry, em *ecs.EventManager, loader EntityLoader) *LuaHost {
	return &LuaHost{registry: r, events: em, loader: loader}
}

// luaInstance is the Shutdownable returned for a loaded Lua plugin; its
// Shutdown closes the VM, mirroring the teacher's DestroyVM symmetry.
type luaInstance struct {
	state *lua.LState
}

func (i *luaInstance) Shutdown() error {
	i.state.Close()
	return nil
}

// Load runs scriptPath to completion, then calls its global "init"
// function (if defined) with config converted to a Lua table, and
// returns an Instance wrapping the live VM.
func (h *LuaHost) Load(scriptPath string, config value.Value) (Instance, error) {
	state := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		state.Push(state.NewFunction(lib.open))
		state.Push(lua.LString(lib.name))
		state.Call(1, 0)
	}
	h.installAPI(state)

	if err := state.DoFile(scriptPath); err != nil {
		state.Close()
		return nil, ecs.MalformedBytesErr("lua plugin load: " + err.Error())
	}

	initFn := state.GetGlobal("init")
	if initFn.Type() == lua.LTFunction {
		state.Push(initFn)
		state.Push(valueToLua(state, config))
		if err := state.PCall(1, 0, nil); err != nil {
			state.Close()
			return nil, ecs.MalformedBytesErr("lua plugin init: " + err.Error())
		}
	}

	return &luaInstance{state: state}, nil
}

// installAPI exposes a restricted set of registry/event operations as
// Lua global functions, the scripting-side equivalent of the teacher's
// ModECSAPI capability surface (mod/interfaces.go), narrowed to what
// SPEC_FULL.md's scripted-plugin wiring actually needs.
func (h *LuaHost) installAPI(state *lua.LState) {
	state.SetGlobal("spawn", state.NewFunction(func(L *lua.LState) int {
		id := h.registry.Spawn()
		L.Push(lua.LNumber(id))
		return 1
	}))

	state.SetGlobal("destroy", state.NewFunction(func(L *lua.LState) int {
		id := ecs.EntityID(L.CheckNumber(1))
		if err := h.registry.Destroy(id); err != nil {
			L.Push(lua.LString(err.Error()))
			return 1
		}
		return 0
	}))

	state.SetGlobal("add_component", state.NewFunction(func(L *lua.LState) int {
		id := ecs.EntityID(L.CheckNumber(1))
		key := ecs.ComponentType(L.CheckString(2))
		table := L.CheckTable(3)
		v := luaToValue(table)
		data, ok := v.ToAny().(map[string]any)
		if !ok {
			L.Push(lua.LString("add_component: fields must be a table"))
			return 1
		}
		if _, err := h.registry.DecodeComponent(id, key, data); err != nil {
			L.Push(lua.LString(err.Error()))
			return 1
		}
		return 0
	}))

	state.SetGlobal("subscribe", state.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		handler := L.CheckFunction(2)
		h.events.Subscribe(name, ecs.ErrPriority, func(r *ecs.Registry, payload any) (bool, error) {
			L.Push(handler)
			L.Push(valueToLua(L, value.FromAny(payload)))
			if err := L.PCall(1, 1, nil); err != nil {
				return false, ecs.MalformedBytesErr("lua handler: " + err.Error())
			}
			ret := L.Get(-1)
			L.Pop(1)
			return lua.LVAsBool(ret), nil
		})
		return 0
	}))
}

// valueToLua converts a structured value.Value into the matching
// gopher-lua value, the scripting half of the conversion the teacher's
// lua_bridge.go performs with reflect for plain Go structs.
func valueToLua(L *lua.LState, v value.Value) lua.LValue {
	switch v.Kind {
	case value.KindNull:
		return lua.LNil
	case value.KindBool:
		return lua.LBool(v.Bool)
	case value.KindInt:
		return lua.LNumber(v.Int)
	case value.KindReal:
		return lua.LNumber(v.Real)
	case value.KindString:
		return lua.LString(v.Str)
	case value.KindArray:
		t := L.NewTable()
		for i, e := range v.Array {
			t.RawSetInt(i+1, valueToLua(L, e))
		}
		return t
	case value.KindObject:
		t := L.NewTable()
		for _, k := range v.Keys() {
			t.RawSetString(k, valueToLua(L, v.Object[k]))
		}
		return t
	default:
		return lua.LNil
	}
}

// luaToValue is the inverse of valueToLua, used to decode a Lua table
// argument back into the structured-value tree before it reaches
// mapstructure/component decode.
func luaToValue(t *lua.LTable) value.Value {
	isArray := true
	maxIndex := 0
	t.ForEach(func(k, _ lua.LValue) {
		if n, ok := k.(lua.LNumber); ok && int(n) == int(n) {
			if int(n) > maxIndex {
				maxIndex = int(n)
			}
		} else {
			isArray = false
		}
	})
	if isArray && maxIndex == t.Len() {
		items := make([]value.Value, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			items = append(items, luaValueToValue(t.RawGetInt(i)))
		}
		return value.Array(items...)
	}
	obj := make(map[string]value.Value)
	t.ForEach(func(k, v lua.LValue) {
		obj[fmt.Sprint(k)] = luaValueToValue(v)
	})
	return value.Object(obj)
}

func luaValueToValue(v lua.LValue) value.Value {
	switch lv := v.(type) {
	case lua.LBool:
		return value.Bool(bool(lv))
	case lua.LNumber:
		f := float64(lv)
		if f == float64(int64(f)) {
			return value.Int(int64(f))
		}
		return value.Real(f)
	case lua.LString:
		return value.String(string(lv))
	case *lua.LTable:
		return luaToValue(lv)
	default:
		return value.Null()
	}
}
