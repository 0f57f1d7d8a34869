// Package regression evaluates the price models produced by the offline
// training process.
package regression

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidModel   = errors.New("invalid model")
	ErrDimension      = errors.New("feature vector has wrong length")
	ErrNonFiniteInput = errors.New("feature value is not finite")
	ErrNonFiniteScore = errors.New("model produced a non-finite prediction")
)

// Model kinds as they appear in artifacts.
const (
	KindLinear       = "linear"
	KindTreeEnsemble = "tree_ensemble"
)

// Model maps an ordered feature vector to a price.
type Model interface {
	// Kind names the model family.
	Kind() string
	// FeatureNames lists the columns in the order Predict expects them.
	FeatureNames() []string
	// Predict evaluates the model on x.
	Predict(x []float64) (float64, error)
}

func checkInput(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(x), want)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d", ErrNonFiniteInput, i)
		}
	}
	return nil
}

func checkOutput(y float64) (float64, error) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, ErrNonFiniteScore
	}
	return y, nil
}

func checkNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: no feature names", ErrInvalidModel)
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("%w: empty feature name", ErrInvalidModel)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: duplicate feature %s", ErrInvalidModel, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
