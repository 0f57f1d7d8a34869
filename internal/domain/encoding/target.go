// Package encoding implements the target encoder that turns categorical
// columns into the numeric statistics learned at training time.
package encoding

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/immoeliza/pricer/internal/domain/property"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrMissingColumn   = errors.New("column missing from record")
	ErrInvalidEncoder  = errors.New("invalid encoder")
)

// Policy decides what happens to a category the encoder was not fitted on.
type Policy string

const (
	// UseValue replaces unknown categories by the prior.
	UseValue Policy = "value"
	// Fail rejects unknown categories.
	Fail Policy = "error"
)

// ParsePolicy accepts "value" or "error"; "" means UseValue.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UseValue:
		return UseValue, nil
	case Fail:
		return Fail, nil
	default:
		return "", fmt.Errorf("%w: unknown policy %q", ErrInvalidEncoder, s)
	}
}

// TargetEncoder holds fitted per-column category statistics. It is immutable
// after construction and safe for concurrent use.
type TargetEncoder struct {
	prior   float64
	policy  Policy
	columns []string
	mapping map[string]map[string]float64
}

// Option applies a configuration option to the TargetEncoder.
type Option func(*TargetEncoder)

// WithPolicy sets the unknown-category policy.
func WithPolicy(p Policy) Option {
	return func(e *TargetEncoder) {
		if p != "" {
			e.policy = p
		}
	}
}

// NewTargetEncoder builds an encoder from a fitted mapping column -> category -> value.
// Category keys are NFC-normalized.
func NewTargetEncoder(prior float64, mapping map[string]map[string]float64, opts ...Option) (*TargetEncoder, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidEncoder)
	}
	e := &TargetEncoder{
		prior:   prior,
		policy:  UseValue,
		mapping: make(map[string]map[string]float64, len(mapping)),
	}
	for _, opt := range opts {
		opt(e)
	}
	for col, cats := range mapping {
		if len(cats) == 0 {
			return nil, fmt.Errorf("%w: column %s has no categories", ErrInvalidEncoder, col)
		}
		m := make(map[string]float64, len(cats))
		for k, v := range cats {
			m[fittedKey(k)] = v
		}
		e.mapping[col] = m
		e.columns = append(e.columns, col)
	}
	sort.Strings(e.columns)
	return e, nil
}

// Key returns the lookup key for a normalized value: NFC text, or the number
// in shortest form (1990 -> "1990"). Text is not trimmed, so "Brussels " is
// a different category from "Brussels".
func Key(v property.Value) string {
	return norm.NFC.String(v.String())
}

// fittedKey canonicalizes an artifact key so "1990.0" and "1990" collide.
func fittedKey(k string) string {
	if f, err := strconv.ParseFloat(strings.TrimSpace(k), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Key(property.Number(f))
	}
	return Key(property.Text(k))
}

// Prior is the value used for unknown categories under UseValue.
func (e *TargetEncoder) Prior() float64 { return e.prior }

// Policy returns the unknown-category policy.
func (e *TargetEncoder) Policy() Policy { return e.policy }

// Columns returns the encoded column names, sorted.
func (e *TargetEncoder) Columns() []string {
	out := make([]string, len(e.columns))
	copy(out, e.columns)
	return out
}

// Lookup returns the encoding of v in column. known is false when the
// category was not seen at fit time, in which case the prior is returned.
func (e *TargetEncoder) Lookup(column string, v property.Value) (value float64, known bool) {
	cats, ok := e.mapping[column]
	if !ok {
		return e.prior, false
	}
	if enc, ok := cats[Key(v)]; ok {
		return enc, true
	}
	return e.prior, false
}

// Transform returns a copy of rec with every encoded column replaced by its
// statistic, plus the columns that fell back to the prior.
func (e *TargetEncoder) Transform(rec property.Record) (property.Record, []string, error) {
	out := make(property.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	var unknown []string
	for _, col := range e.columns {
		v, ok := rec[col]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		enc, known := e.Lookup(col, v)
		if !known {
			if e.policy == Fail {
				return nil, nil, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, col, v.String())
			}
			unknown = append(unknown, col)
		}
		out[col] = property.Number(enc)
	}
	return out, unknown, nil
}
