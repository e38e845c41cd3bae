package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/ib-77/cbd/pkg/collatz"
)

var (
	ErrInvalidFilter = errors.New("filter: invalid filter")
	ErrUnknownFilter = errors.New("filter: unknown filter")
)

type Type string

const (
	// LTE keeps column <= p0; inverted: column > p0.
	LTE Type = "LTE"
	// GTE keeps column >= p0; inverted: column < p0.
	GTE Type = "GTE"
	// RNG keeps p0 <= column <= p1; inverted: outside that range.
	RNG Type = "RNG"
	// LST keeps column in the parameter list; inverted: not in it.
	LST Type = "LST"
	// EQL keeps column == p0; inverted: column != p0.
	EQL Type = "EQL"
)

// Filter is a single-column predicate. Polarity is required; false inverts
// the predicate.
type Filter struct {
	Name       string    `yaml:"name" validate:"required"`
	Type       Type      `yaml:"type" validate:"required,oneof=LTE GTE RNG LST EQL"`
	Polarity   *bool     `yaml:"polarity" validate:"required"`
	Column     string    `yaml:"column" validate:"required"`
	Parameters []float64 `yaml:"parameters" validate:"required,min=1"`
}

var validate = validator.New()

// Validate checks the struct tags, the column name and the parameter arity
// of the filter type.
func (f Filter) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	if _, ok := columns[f.Column]; !ok {
		return fmt.Errorf("%w: %q has no column %q", ErrInvalidFilter, f.Name, f.Column)
	}

	want := 0
	switch f.Type {
	case LTE, GTE, EQL:
		want = 1
	case RNG:
		want = 2
	}
	if want > 0 && len(f.Parameters) != want {
		return fmt.Errorf("%w: %q: %s takes %d parameter(s), got %d",
			ErrInvalidFilter, f.Name, f.Type, want, len(f.Parameters))
	}
	if f.Type == RNG && f.Parameters[0] > f.Parameters[1] {
		return fmt.Errorf("%w: %q: range lower bound %v is above upper bound %v",
			ErrInvalidFilter, f.Name, f.Parameters[0], f.Parameters[1])
	}
	return nil
}

func (f Filter) positive() bool {
	return f.Polarity == nil || *f.Polarity
}

// Match reports whether n passes the filter. The filter must be valid.
func (f Filter) Match(n *collatz.Number) bool {
	v, _ := Field(n, f.Column)
	p := f.Parameters

	var keep bool
	switch f.Type {
	case LTE:
		keep = v <= p[0]
	case GTE:
		keep = v >= p[0]
	case RNG:
		keep = v >= p[0] && v <= p[1]
	case LST:
		keep = slices.Contains(p, v)
	case EQL:
		keep = v == p[0]
	}
	return keep == f.positive()
}

// Apply returns the numbers that pass the filter, in input order.
func (f Filter) Apply(numbers []*collatz.Number) ([]*collatz.Number, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	out := make([]*collatz.Number, 0, len(numbers))
	for _, n := range numbers {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Clause renders the filter as a SQL condition with its arguments.
func (f Filter) Clause() (string, []interface{}) {
	col, p := f.Column, f.Parameters
	pos := f.positive()

	pick := func(yes, no string) string {
		if pos {
			return yes
		}
		return no
	}

	switch f.Type {
	case LTE:
		return col + pick(" <= ?", " > ?"), []interface{}{p[0]}
	case GTE:
		return col + pick(" >= ?", " < ?"), []interface{}{p[0]}
	case RNG:
		return col + pick(" BETWEEN ? AND ?", " NOT BETWEEN ? AND ?"), []interface{}{p[0], p[1]}
	case LST:
		return col + pick(" IN ?", " NOT IN ?"), []interface{}{p}
	default:
		return col + pick(" = ?", " <> ?"), []interface{}{p[0]}
	}
}

// Scope returns a gorm scope applying the filter. An invalid filter adds
// its validation error to the query.
func (f Filter) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if err := f.Validate(); err != nil {
			_ = db.AddError(err)
			return db
		}
		query, args := f.Clause()
		return db.Where(query, args...)
	}
}

func (f Filter) String() string {
	pol := ""
	if !f.positive() {
		pol = "!"
	}
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s%s(%s; %s)", pol, f.Type, f.Column, strings.Join(params, ","))
}
