package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Imputation strategy names accepted under handle_missing.strategies.
const (
	StrategyMean         = "mean"
	StrategyMedian       = "median"
	StrategyMostFrequent = "most_frequent"
	StrategyKNN          = "knn"
)

// KnownStrategy reports whether name is a supported imputation strategy.
func KnownStrategy(name string) bool {
	switch name {
	case StrategyMean, StrategyMedian, StrategyMostFrequent, StrategyKNN:
		return true
	}
	return false
}

// SimpleStrategy reports whether name is a column-statistic strategy that
// emits missing indicators (everything except knn).
func SimpleStrategy(name string) bool {
	return KnownStrategy(name) && name != StrategyKNN
}

// StrategyGroup is one entry of the strategies mapping.
type StrategyGroup struct {
	Strategy string
	Columns  []string
}

// Strategies is the strategies mapping with its document order preserved.
// A plain map would lose the order, and the order decides where imputed
// columns are processed.
type Strategies []StrategyGroup

// UnmarshalYAML decodes a mapping of strategy -> column list, keeping the
// key order from the document. Repeated keys are rejected.
func (s *Strategies) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: strategies must be a mapping of strategy to column list", n.Line)
	}
	out := make(Strategies, 0, len(n.Content)/2)
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		var name string
		if err := k.Decode(&name); err != nil {
			return fmt.Errorf("line %d: strategy name: %w", k.Line, err)
		}
		if seen[name] {
			return fmt.Errorf("line %d: strategy %q listed twice", k.Line, name)
		}
		seen[name] = true

		var cols []string
		if err := v.Decode(&cols); err != nil {
			return fmt.Errorf("line %d: columns for %q: %w", v.Line, name, err)
		}
		out = append(out, StrategyGroup{Strategy: name, Columns: cols})
	}
	*s = out
	return nil
}

// MarshalYAML writes the groups back as an ordered mapping.
func (s Strategies) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range s {
		var v yaml.Node
		if err := v.Encode(g.Columns); err != nil {
			return nil, err
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: g.Strategy},
			&v,
		)
	}
	return n, nil
}

// Columns returns the columns of the named strategy, or nil.
func (s Strategies) Columns(strategy string) []string {
	for _, g := range s {
		if g.Strategy == strategy {
			return g.Columns
		}
	}
	return nil
}
