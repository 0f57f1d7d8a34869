package regression

import (
	"fmt"
	"math"
)

// Aggregation modes for TreeEnsemble.
const (
	// AggregateSum adds tree outputs scaled by the learning rate (boosting).
	AggregateSum = "sum"
	// AggregateMean averages tree outputs (random forests).
	AggregateMean = "mean"
)

// Node is one entry of a flat tree. Node 0 is the root. A row goes to Left
// when x[Feature] <= Threshold.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// Tree is a flat list of nodes.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// TreeEnsemble evaluates a set of regression trees.
type TreeEnsemble struct {
	names        []string
	baseScore    float64
	aggregation  string
	learningRate float64
	trees        []Tree
}

// EnsembleOption applies a configuration option to the TreeEnsemble.
type EnsembleOption func(*TreeEnsemble)

// WithBaseScore sets the constant added to the aggregated tree output.
func WithBaseScore(v float64) EnsembleOption {
	return func(e *TreeEnsemble) { e.baseScore = v }
}

// WithAggregation selects AggregateSum or AggregateMean.
func WithAggregation(a string) EnsembleOption {
	return func(e *TreeEnsemble) {
		if a != "" {
			e.aggregation = a
		}
	}
}

// WithLearningRate scales each tree under AggregateSum.
func WithLearningRate(lr float64) EnsembleOption {
	return func(e *TreeEnsemble) {
		if lr != 0 {
			e.learningRate = lr
		}
	}
}

// NewTreeEnsemble validates every tree and builds the ensemble.
func NewTreeEnsemble(names []string, trees []Tree, opts ...EnsembleOption) (*TreeEnsemble, error) {
	if err := checkNames(names); err != nil {
		return nil, err
	}
	e := &TreeEnsemble{
		names:        cloneNames(names),
		aggregation:  AggregateSum,
		learningRate: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	switch e.aggregation {
	case AggregateSum, AggregateMean:
	default:
		return nil, fmt.Errorf("%w: unknown aggregation %q", ErrInvalidModel, e.aggregation)
	}
	if math.IsNaN(e.baseScore) || math.IsInf(e.baseScore, 0) {
		return nil, fmt.Errorf("%w: base score is not finite", ErrInvalidModel)
	}
	if math.IsNaN(e.learningRate) || math.IsInf(e.learningRate, 0) || e.learningRate <= 0 {
		return nil, fmt.Errorf("%w: learning rate must be positive", ErrInvalidModel)
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrInvalidModel)
	}
	e.trees = make([]Tree, len(trees))
	for i, t := range trees {
		if err := validateTree(t, len(names)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		nodes := make([]Node, len(t.Nodes))
		copy(nodes, t.Nodes)
		e.trees[i] = Tree{Nodes: nodes}
	}
	return e, nil
}

// validateTree checks child indexes, feature indexes and that no path from
// the root revisits a node.
func validateTree(t Tree, features int) error {
	n := len(t.Nodes)
	if n == 0 {
		return fmt.Errorf("%w: empty tree", ErrInvalidModel)
	}
	for i, node := range t.Nodes {
		if node.Leaf {
			if math.IsNaN(node.Value) || math.IsInf(node.Value, 0) {
				return fmt.Errorf("%w: node %d leaf value is not finite", ErrInvalidModel, i)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= features {
			return fmt.Errorf("%w: node %d feature %d out of range", ErrInvalidModel, i, node.Feature)
		}
		if node.Left < 0 || node.Left >= n || node.Right < 0 || node.Right >= n {
			return fmt.Errorf("%w: node %d has dangling child", ErrInvalidModel, i)
		}
		if math.IsNaN(node.Threshold) {
			return fmt.Errorf("%w: node %d threshold is NaN", ErrInvalidModel, i)
		}
	}

	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]uint8, n)
	var walk func(i int) error
	walk = func(i int) error {
		switch state[i] {
		case onPath:
			return fmt.Errorf("%w: cycle through node %d", ErrInvalidModel, i)
		case done:
			return nil
		}
		state[i] = onPath
		if node := t.Nodes[i]; !node.Leaf {
			if err := walk(node.Left); err != nil {
				return err
			}
			if err := walk(node.Right); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}
	return walk(0)
}

// Kind implements Model.
func (e *TreeEnsemble) Kind() string { return KindTreeEnsemble }

// FeatureNames implements Model.
func (e *TreeEnsemble) FeatureNames() []string { return cloneNames(e.names) }

// Predict implements Model.
func (e *TreeEnsemble) Predict(x []float64) (float64, error) {
	if err := checkInput(x, len(e.names)); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range e.trees {
		sum += t.eval(x)
	}
	switch e.aggregation {
	case AggregateMean:
		sum /= float64(len(e.trees))
	default:
		sum *= e.learningRate
	}
	return checkOutput(e.baseScore + sum)
}

// eval walks a validated tree; validation guarantees termination.
func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Leaf {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}
