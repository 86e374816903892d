package ecs

import "github.com/expr-lang/expr"

// guardEnv is the evaluation environment exposed to a compiled guard
// expression: the current tick's Now snapshot and live entity/component
// counts, narrow by design (SPEC_FULL.md §11: "reused for a narrower
// purpose, tick-gating, not data transform" — no component-field access).
type guardEnv struct {
	Tick  uint64
	Delta float64 // seconds
	Count func(component string) int
}

// CompileGuard compiles src (an expr-lang expression expected to
// evaluate to a bool) into a Guard usable with Registry.AddSystem. A
// malformed expression is reported at compile time, not at tick time.
func CompileGuard(src string) (Guard, error) {
	program, err := expr.Compile(src, expr.Env(guardEnv{}), expr.AsBool())
	if err != nil {
		return nil, InvalidHookExpressionErr(src, err.Error())
	}
	return func(r *Registry, now Now) (bool, error) {
		env := guardEnv{
			Tick:  uint64(now.Tick),
			Delta: now.Delta.Seconds(),
			Count: func(component string) int { return r.Count(ComponentType(component)) },
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return false, err
		}
		b, _ := out.(bool)
		return b, nil
	}, nil
}
