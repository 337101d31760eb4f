package rulebook

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// luaRunner owns one Lua VM holding compiled override functions. The VM is
// not goroutine-safe, so every call goes through the mutex.
type luaRunner struct {
	mu sync.Mutex
	vm *lua.LState
}

// LoadLuaOverrides runs a Lua file and converts its global `overrides`
// table (dotted path -> function) into an Overrides map of Go closures.
// The dotted-path grammar is the same as for Go overrides:
//
//	overrides = {
//	    ["environment.darkness.calculate"] = function(ctx) return -3 end,
//	    ["feature.danger_sense.enabled"]   = function(ctx) return ctx.inCombat end,
//	    ["display.showDetails"]            = function(ctx, results) return true end,
//	}
func LoadLuaOverrides(path string) (Overrides, error) {
	vm := lua.NewState()
	if err := vm.DoFile(path); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	table, ok := vm.GetGlobal("overrides").(*lua.LTable)
	if !ok {
		vm.Close()
		return nil, fmt.Errorf("%s: global `overrides` table not found", path)
	}

	runner := &luaRunner{vm: vm}
	overrides := Overrides{}
	var convErr error

	table.ForEach(func(key, value lua.LValue) {
		if convErr != nil {
			return
		}
		pathKey, ok := key.(lua.LString)
		if !ok {
			convErr = fmt.Errorf("%s: override keys must be strings, got %s", path, key.Type())
			return
		}
		fn, ok := value.(*lua.LFunction)
		if !ok {
			convErr = fmt.Errorf("%s: override %q must be a function, got %s", path, pathKey, value.Type())
			return
		}

		wrapped, err := runner.wrap(string(pathKey), fn)
		if err != nil {
			convErr = err
			return
		}
		overrides[string(pathKey)] = wrapped
	})

	if convErr != nil {
		vm.Close()
		return nil, convErr
	}
	return overrides, nil
}

func (r *luaRunner) wrap(path string, fn *lua.LFunction) (interface{}, error) {
	parts := strings.Split(path, ".")

	if len(parts) == 2 && parts[0] == displayCategory {
		return r.wrapDisplay(path, fn), nil
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("lua override %s: path must be category.rule.field", path)
	}

	switch parts[2] {
	case fieldEnabled:
		return r.wrapEnabled(path, fn), nil
	case fieldCalculate:
		return r.wrapCalculate(path, fn), nil
	case fieldReason:
		return r.wrapReason(path, fn), nil
	default:
		return nil, fmt.Errorf("lua override %s: unknown field %q", path, parts[2])
	}
}

func (r *luaRunner) wrapEnabled(path string, fn *lua.LFunction) func(*Context) bool {
	return func(ctx *Context) bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		ret, err := r.callLocked(fn, contextToLua(r.vm, ctx))
		if err != nil {
			slog.Warn("lua enabled override failed", "path", path, "error", err)
			return false
		}
		return lua.LVAsBool(ret)
	}
}

func (r *luaRunner) wrapCalculate(path string, fn *lua.LFunction) func(*Context) int {
	return func(ctx *Context) int {
		r.mu.Lock()
		defer r.mu.Unlock()
		ret, err := r.callLocked(fn, contextToLua(r.vm, ctx))
		if err != nil {
			slog.Warn("lua calculate override failed", "path", path, "error", err)
			return 0
		}
		if n, ok := ret.(lua.LNumber); ok {
			return int(n)
		}
		slog.Warn("lua calculate override returned non-number", "path", path, "type", ret.Type())
		return 0
	}
}

func (r *luaRunner) wrapReason(path string, fn *lua.LFunction) func(int, *Context) string {
	return func(value int, ctx *Context) string {
		r.mu.Lock()
		defer r.mu.Unlock()
		ret, err := r.callLocked(fn, lua.LNumber(value), contextToLua(r.vm, ctx))
		if err != nil {
			slog.Warn("lua reason override failed", "path", path, "error", err)
			return fmt.Sprintf("%+d", value)
		}
		return lua.LVAsString(ret)
	}
}

func (r *luaRunner) wrapDisplay(path string, fn *lua.LFunction) func(*Context, Results) bool {
	return func(ctx *Context, results Results) bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		resultsTable := r.vm.NewTable()
		for k, v := range results {
			resultsTable.RawSetString(k, lua.LNumber(v))
		}
		ret, err := r.callLocked(fn, contextToLua(r.vm, ctx), resultsTable)
		if err != nil {
			slog.Warn("lua display override failed", "path", path, "error", err)
			return false
		}
		return lua.LVAsBool(ret)
	}
}

// callLocked invokes a compiled override. Caller holds r.mu.
func (r *luaRunner) callLocked(fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	if err := r.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, err
	}
	ret := r.vm.Get(-1)
	r.vm.Pop(1)
	return ret, nil
}

// contextToLua flattens the rule context into a Lua table. Caller must hold
// no assumptions about table identity between calls.
func contextToLua(vm *lua.LState, ctx *Context) *lua.LTable {
	t := vm.NewTable()
	t.RawSetString("actionType", lua.LString(ctx.ActionType))
	t.RawSetString("inCombat", lua.LBool(ctx.InCombat))

	actor := vm.NewTable()
	actor.RawSetString("level", lua.LNumber(ctx.Actor.Level))
	actor.RawSetString("encumbrance", lua.LNumber(ctx.Actor.Encumbrance))
	actor.RawSetString("attackTotal", lua.LNumber(ctx.Actor.AttackTotal))
	actor.RawSetString("archeryTotal", lua.LNumber(ctx.Actor.ArcheryTotal))
	actor.RawSetString("defenseTotal", lua.LNumber(ctx.Actor.DefenseTotal))
	actor.RawSetString("magicDiceRemaining", lua.LNumber(ctx.Actor.MagicDiceRemaining))

	attrs := vm.NewTable()
	for name, a := range ctx.Actor.Attributes {
		at := vm.NewTable()
		at.RawSetString("value", lua.LNumber(a.Value))
		at.RawSetString("modifier", lua.LNumber(a.Modifier))
		at.RawSetString("effectiveValue", lua.LNumber(a.EffectiveValue))
		at.RawSetString("effectiveModifier", lua.LNumber(a.EffectiveModifier))
		attrs.RawSetString(name, at)
	}
	actor.RawSetString("attributes", attrs)

	features := vm.NewTable()
	for i, name := range ctx.Actor.ActiveFeatures {
		features.RawSetInt(i+1, lua.LString(name))
	}
	actor.RawSetString("features", features)
	t.RawSetString("actor", actor)

	if ctx.Weapon != nil {
		w := vm.NewTable()
		w.RawSetString("name", lua.LString(ctx.Weapon.Name))
		w.RawSetString("size", lua.LString(string(ctx.Weapon.Size)))
		w.RawSetString("category", lua.LString(string(ctx.Weapon.Category)))
		w.RawSetString("breakage", lua.LNumber(ctx.Weapon.Breakage))
		w.RawSetString("unarmed", lua.LBool(ctx.Weapon.Unarmed))
		w.RawSetString("hasAmmo", lua.LBool(ctx.Weapon.HasAmmo))
		w.RawSetString("ammoRemaining", lua.LNumber(ctx.Weapon.AmmoRemaining))
		t.RawSetString("weapon", w)
	}

	env := vm.NewTable()
	env.RawSetString("darkness", lua.LBool(ctx.Environment.Darkness))
	env.RawSetString("longRange", lua.LBool(ctx.Environment.LongRange))
	env.RawSetString("cover", lua.LBool(ctx.Environment.Cover))
	env.RawSetString("highGround", lua.LBool(ctx.Environment.HighGround))
	t.RawSetString("environment", env)

	opts := vm.NewTable()
	opts.RawSetString("showDetails", lua.LBool(ctx.Options.ShowDetails))
	opts.RawSetString("debug", lua.LBool(ctx.Options.Debug))
	t.RawSetString("options", opts)

	return t
}
