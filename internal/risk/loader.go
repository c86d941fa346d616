package risk

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// ParseRules decodes a YAML rule list and compiles every rule.
// An empty document yields an empty rule set.
func ParseRules(content []byte) ([]Rule, error) {
	rules := make([]Rule, 0)
	if err := yaml.Unmarshal(content, &rules); err != nil {
		return nil, err
	}

	env, err := NewMetricsEnv()
	if err != nil {
		return nil, err
	}

	for i := range rules {
		if err := rules[i].Init(env); err != nil {
			return nil, fmt.Errorf("rule #%d: %w", i+1, err)
		}
	}

	return rules, nil
}

// DefaultRules returns the built-in rule set.
func DefaultRules() ([]Rule, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads rules from file, or returns the built-in set when file is empty.
func LoadRules(file string) ([]Rule, error) {
	if file == "" {
		return DefaultRules()
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	return ParseRules(content)
}
