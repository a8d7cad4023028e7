// Package rules compiles and evaluates score acceptance conditions. A
// condition is a CEL expression over the submitted score's attributes, e.g.
// "acc >= 96.0 && hd" or "score > 800000 && !ez". Pool maps carry such
// expressions; scores failing the active stage map's condition are rejected.
package rules

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/DAYGoodTime/nogu/internal/osu"
)

// Variables carries the score attributes a condition may reference.
type Variables struct {
	Acc      float64
	MaxCombo int64
	Mods     osu.Mods
	Score    int64
}

// Condition wraps a compiled CEL program. The zero value (or an empty
// expression) accepts every score.
type Condition struct {
	prog    cel.Program
	enabled bool
	src     string
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("acc", cel.DoubleType),
		cel.Variable("max_combo", cel.IntType),
		cel.Variable("mods", cel.IntType),
		cel.Variable("score", cel.IntType),
		// CEL has no bitwise operators, so each mod is exposed as a boolean
		// derived from the mods bitmask.
		cel.Variable("nf", cel.BoolType),
		cel.Variable("ez", cel.BoolType),
		cel.Variable("td", cel.BoolType),
		cel.Variable("hd", cel.BoolType),
		cel.Variable("hr", cel.BoolType),
		cel.Variable("sd", cel.BoolType),
		cel.Variable("dt", cel.BoolType),
		cel.Variable("rx", cel.BoolType),
		cel.Variable("ht", cel.BoolType),
		cel.Variable("nc", cel.BoolType),
		cel.Variable("fl", cel.BoolType),
		cel.Variable("at", cel.BoolType),
		cel.Variable("so", cel.BoolType),
		cel.Variable("ap", cel.BoolType),
		cel.Variable("pf", cel.BoolType),
		cel.CrossTypeNumericComparisons(true),
	)
}

// Compile parses, checks, and plans the expression. An empty expression
// yields a disabled condition that accepts everything.
func Compile(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Condition{enabled: false}, nil
	}
	env, err := newEnv()
	if err != nil {
		return Condition{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Condition{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Condition{}, iss2.Err()
	}
	if checked.OutputType() != cel.BoolType {
		return Condition{}, fmt.Errorf("rules: condition %q does not evaluate to a boolean", expr)
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Condition{}, err
	}
	return Condition{prog: prog, enabled: true, src: expr}, nil
}

// Validate reports whether expr would compile. Used when pool maps are
// created so bad expressions are rejected at insert time.
func Validate(expr string) error {
	_, err := Compile(expr)
	return err
}

// String returns the source expression.
func (c Condition) String() string { return c.src }

// Check evaluates the condition against vars. Disabled conditions accept.
func (c Condition) Check(vars Variables) (bool, error) {
	if !c.enabled {
		return true, nil
	}
	out, _, err := c.prog.Eval(map[string]any{
		"acc":       vars.Acc,
		"max_combo": vars.MaxCombo,
		"mods":      int64(vars.Mods),
		"score":     vars.Score,
		"nf":        vars.Mods.Has(osu.ModNoFail),
		"ez":        vars.Mods.Has(osu.ModEasy),
		"td":        vars.Mods.Has(osu.ModTouchDevice),
		"hd":        vars.Mods.Has(osu.ModHidden),
		"hr":        vars.Mods.Has(osu.ModHardRock),
		"sd":        vars.Mods.Has(osu.ModSuddenDeath),
		"dt":        vars.Mods.Has(osu.ModDoubleTime),
		"rx":        vars.Mods.Has(osu.ModRelax),
		"ht":        vars.Mods.Has(osu.ModHalfTime),
		"nc":        vars.Mods.Has(osu.ModNightcore),
		"fl":        vars.Mods.Has(osu.ModFlashlight),
		"at":        vars.Mods.Has(osu.ModAutoplay),
		"so":        vars.Mods.Has(osu.ModSpunOut),
		"ap":        vars.Mods.Has(osu.ModAutopilot),
		"pf":        vars.Mods.Has(osu.ModPerfect),
	})
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rules: condition %q returned non-boolean", c.src)
	}
	return b, nil
}
