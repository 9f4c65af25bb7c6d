// Package app contains the application layer: the routine engine, the
// trigger scheduler, the condition evaluator, and the action dispatcher.
package app

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/expr-lang/expr"

	"github.com/example/hearth/internal/clock"
	"github.com/example/hearth/internal/ports/primary"
	"github.com/example/hearth/internal/ports/secondary"
)

// ConditionEvaluator evaluates a routine's gating conditions. The result
// is the conjunction over all conditions; an empty list passes. A broken
// condition (bad expression, unreachable state source) evaluates false
// rather than crashing the engine.
type ConditionEvaluator struct {
	clock clock.Clock
	state secondary.StateSource
}

// NewConditionEvaluator creates a ConditionEvaluator with injected
// dependencies. state may be nil when no state source is configured; in
// that case state_check conditions evaluate false.
func NewConditionEvaluator(clk clock.Clock, state secondary.StateSource) *ConditionEvaluator {
	return &ConditionEvaluator{clock: clk, state: state}
}

// Evaluate returns true iff every condition holds.
func (e *ConditionEvaluator) Evaluate(ctx context.Context, conditions []primary.Condition) bool {
	for _, c := range conditions {
		if !e.evaluateOne(ctx, c) {
			return false
		}
	}
	return true
}

func (e *ConditionEvaluator) evaluateOne(ctx context.Context, c primary.Condition) bool {
	switch c.Type {
	case primary.ConditionTimeRange:
		// Half-open [start, end) on the current local hour. A start at or
		// past the end is not normalized; such a range never matches.
		hour := e.clock.Now().Hour()
		return hour >= c.StartHour && hour < c.EndHour

	case primary.ConditionComparison, primary.ConditionCustom:
		return e.evaluateExpression(c)

	case primary.ConditionStateCheck:
		return e.evaluateStateCheck(ctx, c)

	default:
		// Unknown condition kinds pass, keeping old definitions runnable
		// after the variant set grows.
		log.Printf("conditions: unknown condition type %q treated as passing", c.Type)
		return true
	}
}

// evaluateExpression runs the condition's "expression" parameter as an
// expr program over the remaining parameters.
func (e *ConditionEvaluator) evaluateExpression(c primary.Condition) bool {
	source, _ := c.Parameters["expression"].(string)
	if source == "" {
		log.Printf("conditions: %s condition has no expression, evaluating false", c.Type)
		return false
	}

	env := make(map[string]any, len(c.Parameters))
	for k, v := range c.Parameters {
		if k != "expression" {
			env[k] = v
		}
	}

	program, err := expr.Compile(source, expr.Env(env), expr.AsBool())
	if err != nil {
		log.Printf("conditions: compile %q: %v", source, err)
		return false
	}
	output, err := expr.Run(program, env)
	if err != nil {
		log.Printf("conditions: run %q: %v", source, err)
		return false
	}
	result, ok := output.(bool)
	return ok && result
}

// evaluateStateCheck queries the state source and compares the observed
// value against the condition's expected value.
func (e *ConditionEvaluator) evaluateStateCheck(ctx context.Context, c primary.Condition) bool {
	if e.state == nil {
		log.Printf("conditions: state_check with no state source configured, evaluating false")
		return false
	}

	entity, _ := c.Parameters["entity"].(string)
	if entity == "" {
		log.Printf("conditions: state_check has no entity, evaluating false")
		return false
	}

	state, err := e.state.GetState(ctx, entity)
	if err != nil {
		log.Printf("conditions: state_check for %s: %v", entity, err)
		return false
	}

	observed := state.State
	if property, _ := c.Parameters["property"].(string); property != "" {
		observed = fmt.Sprint(state.Attributes[property])
	}

	operator, _ := c.Parameters["operator"].(string)
	if operator == "" {
		operator = "eq"
	}
	return compareValues(observed, operator, c.Parameters["value"])
}

// compareValues compares an observed string against an expected value.
// Both sides are compared numerically when they parse as numbers;
// ordering operators require numeric operands.
func compareValues(observed, operator string, expected any) bool {
	want := fmt.Sprint(expected)

	obsNum, obsErr := strconv.ParseFloat(observed, 64)
	wantNum, wantErr := strconv.ParseFloat(want, 64)
	numeric := obsErr == nil && wantErr == nil

	switch operator {
	case "eq":
		if numeric {
			return obsNum == wantNum
		}
		return observed == want
	case "neq":
		if numeric {
			return obsNum != wantNum
		}
		return observed != want
	case "gt":
		return numeric && obsNum > wantNum
	case "lt":
		return numeric && obsNum < wantNum
	case "gte":
		return numeric && obsNum >= wantNum
	case "lte":
		return numeric && obsNum <= wantNum
	default:
		log.Printf("conditions: unknown operator %q, evaluating false", operator)
		return false
	}
}
