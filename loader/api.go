package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Content { title = "...", version = "...", ... }
	L.SetGlobal("Content", L.NewFunction(func(L *lua.LState) int {
		coll.content = L.CheckTable(1)
		return 0
	}))

	// Balance { strength_per_rarity = 0.025, ... }
	L.SetGlobal("Balance", L.NewFunction(func(L *lua.LState) int {
		coll.balance = L.CheckTable(1)
		return 0
	}))

	// GlyphType "id" { random = true, requires = {...} }
	L.SetGlobal("GlyphType", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.types = append(coll.types, rawType{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Effect "id" { bit = 0, types = {...}, description = "..." }
	L.SetGlobal("Effect", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.effects = append(coll.effects, rawEffect{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// On("event_type", { match = {...}, conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))
}

// newNode builds a {type = kind, ...} table from alternating key/value pairs.
func newNode(L *lua.LState, kind string, kv ...any) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(kind))
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			tbl.RawSetString(key, lua.LString(v))
		case lua.LValue:
			tbl.RawSetString(key, v)
		}
	}
	return tbl
}

func registerConditionHelpers(L *lua.LState) {
	// FlagSet("flag")
	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "flag_set", "flag", L.CheckString(1)))
		return 1
	}))

	// FlagNot("flag")
	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "flag_not", "flag", L.CheckString(1)))
		return 1
	}))

	// FlagIs("flag", value)
	L.SetGlobal("FlagIs", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "flag_is", "flag", L.CheckString(1), "value", lua.LBool(L.CheckBool(2))))
		return 1
	}))

	// CounterGt("counter", value)
	L.SetGlobal("CounterGt", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "counter_gt", "counter", L.CheckString(1), "value", L.CheckNumber(2)))
		return 1
	}))

	// CounterLt("counter", value)
	L.SetGlobal("CounterLt", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "counter_lt", "counter", L.CheckString(1), "value", L.CheckNumber(2)))
		return 1
	}))

	// ValueGt("name", value)
	L.SetGlobal("ValueGt", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "value_gt", "value_name", L.CheckString(1), "value", L.CheckNumber(2)))
		return 1
	}))

	// ValueLt("name", value)
	L.SetGlobal("ValueLt", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "value_lt", "value_name", L.CheckString(1), "value", L.CheckNumber(2)))
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "not", "inner", L.CheckTable(1)))
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "say", "text", L.CheckString(1)))
		return 1
	}))

	// SetFlag("flag", value)
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "set_flag", "flag", L.CheckString(1), "value", lua.LBool(L.CheckBool(2))))
		return 1
	}))

	// IncCounter("counter", amount)
	L.SetGlobal("IncCounter", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "inc_counter", "counter", L.CheckString(1), "amount", L.CheckNumber(2)))
		return 1
	}))

	// SetCounter("counter", value)
	L.SetGlobal("SetCounter", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "set_counter", "counter", L.CheckString(1), "value", L.CheckNumber(2)))
		return 1
	}))

	// SetValue("name", value)
	L.SetGlobal("SetValue", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "set_value", "name", L.CheckString(1), "value", L.CheckNumber(2)))
		return 1
	}))

	// SetBestLevel(level)
	L.SetGlobal("SetBestLevel", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "set_best_level", "level", L.CheckNumber(1)))
		return 1
	}))

	// EmitEvent("type")
	L.SetGlobal("EmitEvent", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "emit_event", "event", L.CheckString(1)))
		return 1
	}))

	// Stop()
	L.SetGlobal("Stop", L.NewFunction(func(L *lua.LState) int {
		L.Push(newNode(L, "stop"))
		return 1
	}))
}
