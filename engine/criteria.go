package engine

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultSuccessCriteria is the score an actor run must meet when a flow
// does not declare its own criteria.
const DefaultSuccessCriteria = "success_rate >= 50"

// Criteria is a compiled success-criteria expression evaluated against an
// actor's step statistics.
type Criteria struct {
	source  string
	program *vm.Program
}

// criteriaEnv builds the variables a criteria expression can reference.
func criteriaEnv(rate float64, successful, total int) map[string]any {
	return map[string]any{
		"success_rate":     rate,
		"successful_steps": successful,
		"total_steps":      total,
	}
}

// CompileCriteria compiles a success-criteria expression, defaulting to
// DefaultSuccessCriteria when source is empty. Compilation failures are
// configuration errors and surface before any run starts.
func CompileCriteria(source string) (*Criteria, error) {
	if source == "" {
		source = DefaultSuccessCriteria
	}
	program, err := expr.Compile(source,
		expr.Env(criteriaEnv(0, 0, 0)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling success criteria %q: %w", source, err)
	}
	return &Criteria{source: source, program: program}, nil
}

// Evaluate scores one actor run. Runtime evaluation errors count as not
// meeting the criteria.
func (c *Criteria) Evaluate(rate float64, successful, total int) bool {
	out, err := expr.Run(c.program, criteriaEnv(rate, successful, total))
	if err != nil {
		return false
	}
	b, _ := out.(bool)
	return b
}

// String returns the expression source.
func (c *Criteria) String() string { return c.source }
