// Package artifact loads the encoder and model exported by the training
// process. Files are JSON, gzip-compressed when the name ends in ".gz".
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/immoeliza/pricer/internal/domain/encoding"
	"github.com/immoeliza/pricer/internal/domain/property"
	"github.com/immoeliza/pricer/internal/domain/regression"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownKind    = errors.New("unknown artifact kind")
	ErrSchemaMismatch = errors.New("artifact does not match the property schema")
	ErrDecode         = errors.New("cannot decode artifact")
)

// Artifact kinds.
const (
	KindTarget = "target"
)

// EncoderFile is the on-disk form of a target encoder.
type EncoderFile struct {
	Kind          string                        `json:"kind"`
	Prior         float64                       `json:"prior"`
	HandleUnknown string                        `json:"handle_unknown,omitempty"`
	Columns       map[string]map[string]float64 `json:"columns"`
}

// ModelFile is the on-disk form of a regression model.
type ModelFile struct {
	Kind         string            `json:"kind"`
	FeatureNames []string          `json:"feature_names"`
	Intercept    float64           `json:"intercept,omitempty"`
	Coefficients []float64         `json:"coefficients,omitempty"`
	BaseScore    float64           `json:"base_score,omitempty"`
	Aggregation  string            `json:"aggregation,omitempty"`
	LearningRate float64           `json:"learning_rate,omitempty"`
	Trees        []regression.Tree `json:"trees,omitempty"`
}

// Loader reads artifacts and checks them against a column layout.
type Loader struct {
	features []string
	encoded  []string
	policy   encoding.Policy
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithPolicy overrides the encoder's handle_unknown setting. "" keeps it.
func WithPolicy(p encoding.Policy) Option {
	return func(l *Loader) { l.policy = p }
}

// withColumns replaces the expected feature and encoded column sets.
func withColumns(features, encoded []string) Option {
	return func(l *Loader) {
		if len(features) > 0 {
			l.features = features
		}
		if len(encoded) > 0 {
			l.encoded = encoded
		}
	}
}

// NewLoader creates a loader expecting the property schema.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		features: property.Names(),
		encoded:  property.EncodedColumns(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadEncoder reads and validates an encoder artifact.
func (l *Loader) LoadEncoder(path string) (*encoding.TargetEncoder, error) {
	var f EncoderFile
	if err := readJSON(path, &f); err != nil {
		return nil, err
	}
	return l.Encoder(f)
}

// Encoder validates f and builds the encoder.
func (l *Loader) Encoder(f EncoderFile) (*encoding.TargetEncoder, error) {
	if f.Kind != KindTarget {
		return nil, fmt.Errorf("%w: encoder %q", ErrUnknownKind, f.Kind)
	}
	if err := sameSet("encoder columns", keys(f.Columns), l.encoded); err != nil {
		return nil, err
	}
	policy, err := encoding.ParsePolicy(f.HandleUnknown)
	if err != nil {
		return nil, err
	}
	if l.policy != "" {
		policy = l.policy
	}
	enc, err := encoding.NewTargetEncoder(f.Prior, f.Columns, encoding.WithPolicy(policy))
	if err != nil {
		return nil, fmt.Errorf("build encoder: %w", err)
	}
	return enc, nil
}

// LoadModel reads and validates a model artifact.
func (l *Loader) LoadModel(path string) (regression.Model, error) {
	var f ModelFile
	if err := readJSON(path, &f); err != nil {
		return nil, err
	}
	return l.Model(f)
}

// Model validates f and builds the model it describes.
func (l *Loader) Model(f ModelFile) (regression.Model, error) {
	if err := sameSet("model features", f.FeatureNames, l.features); err != nil {
		return nil, err
	}
	switch f.Kind {
	case regression.KindLinear:
		m, err := regression.NewLinear(f.FeatureNames, f.Intercept, f.Coefficients)
		if err != nil {
			return nil, fmt.Errorf("build linear model: %w", err)
		}
		return m, nil
	case regression.KindTreeEnsemble:
		m, err := regression.NewTreeEnsemble(f.FeatureNames, f.Trees,
			regression.WithBaseScore(f.BaseScore),
			regression.WithAggregation(f.Aggregation),
			regression.WithLearningRate(f.LearningRate),
		)
		if err != nil {
			return nil, fmt.Errorf("build tree ensemble: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: model %q", ErrUnknownKind, f.Kind)
	}
}

func readJSON(path string, v any) error {
	fh, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = fh.Close() }()

	var r io.Reader = fh
	if isGzip(path) {
		zr, err := gzip.NewReader(fh)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}

func isGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

func keys(m map[string]map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// sameSet reports missing and unexpected names between got and want.
func sameSet(what string, got, want []string) error {
	have := make(map[string]struct{}, len(got))
	for _, g := range got {
		have[g] = struct{}{}
	}
	expected := make(map[string]struct{}, len(want))
	var missing, extra []string
	for _, w := range want {
		expected[w] = struct{}{}
		if _, ok := have[w]; !ok {
			missing = append(missing, w)
		}
	}
	for g := range have {
		if _, ok := expected[g]; !ok {
			extra = append(extra, g)
		}
	}
	if len(missing) == 0 && len(extra) == 0 && len(got) == len(want) {
		return nil
	}
	sort.Strings(extra)
	return fmt.Errorf("%w: %s missing %v, unexpected %v", ErrSchemaMismatch, what, missing, extra)
}
