package risk

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Rule is one retention-risk signal definition.
// When is a CEL predicate over the agent metrics; Describe is an optional CEL
// string expression rendered into the signal description.
type Rule struct {
	Name     string   `yaml:"name"`
	Severity Severity `yaml:"severity"`
	Weight   int      `yaml:"weight"`
	When     string   `yaml:"when"`
	Describe string   `yaml:"describe"`

	program     cel.Program
	description cel.Program
}

// Init validates the rule and compiles its expressions against env.
func (r *Rule) Init(env *cel.Env) error {
	if r.Name == "" {
		return errors.New("rule name must be specified")
	}
	if err := r.Severity.Validate(); err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}

	var err error
	r.program, err = compile(env, r.When, cel.BoolType)
	if err != nil {
		return fmt.Errorf("rule %q when: %w", r.Name, err)
	}

	if r.Describe == "" {
		return nil
	}
	r.description, err = compile(env, r.Describe, cel.StringType)
	if err != nil {
		return fmt.Errorf("rule %q describe: %w", r.Name, err)
	}

	return nil
}

// Eval runs the rule over a metrics activation. The returned bool reports
// whether the rule fired. A description that cannot be rendered falls back
// to the rule name.
func (r *Rule) Eval(vars map[string]any) (Signal, bool, error) {
	if r.program == nil {
		return Signal{}, false, fmt.Errorf("rule %q is not initialized", r.Name)
	}

	result, _, err := r.program.Eval(vars)
	if err != nil {
		return Signal{}, false, err
	}
	if fired, ok := result.Value().(bool); !ok || !fired {
		return Signal{}, false, nil
	}

	signal := Signal{
		Name:        r.Name,
		Severity:    r.Severity,
		Description: r.Name,
		Weight:      r.Weight,
	}
	if r.description != nil {
		out, _, err := r.description.Eval(vars)
		if err == nil {
			if text, ok := out.Value().(string); ok {
				signal.Description = text
			}
		}
	}

	return signal, true, nil
}

func compile(env *cel.Env, expr string, want *cel.Type) (cel.Program, error) {
	ast, iss := env.Parse(expr)
	if iss.Err() != nil {
		return nil, iss.Err()
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if !checked.OutputType().IsExactType(want) {
		return nil, fmt.Errorf("expression must return %s, got %s", want, checked.OutputType())
	}

	return env.Program(checked)
}
