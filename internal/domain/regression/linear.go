package regression

import (
	"fmt"
	"math"
)

// Linear is an ordinary least-squares style model: intercept + w·x.
type Linear struct {
	names        []string
	intercept    float64
	coefficients []float64
}

// NewLinear validates and builds a linear model.
func NewLinear(names []string, intercept float64, coefficients []float64) (*Linear, error) {
	if err := checkNames(names); err != nil {
		return nil, err
	}
	if len(coefficients) != len(names) {
		return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrInvalidModel, len(coefficients), len(names))
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrInvalidModel)
	}
	w := make([]float64, len(coefficients))
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidModel, i)
		}
		w[i] = c
	}
	return &Linear{names: cloneNames(names), intercept: intercept, coefficients: w}, nil
}

// Kind implements Model.
func (m *Linear) Kind() string { return KindLinear }

// FeatureNames implements Model.
func (m *Linear) FeatureNames() []string { return cloneNames(m.names) }

// Predict implements Model.
func (m *Linear) Predict(x []float64) (float64, error) {
	if err := checkInput(x, len(m.coefficients)); err != nil {
		return 0, err
	}
	y := m.intercept
	for i, w := range m.coefficients {
		y += w * x[i]
	}
	return checkOutput(y)
}
