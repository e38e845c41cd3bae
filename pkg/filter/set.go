package filter

import (
	"fmt"

	"github.com/ib-77/cbd/pkg/collatz"
)

// Set holds named filters in the order they were added.
type Set struct {
	byName map[string]Filter
	names  []string
}

func NewSet(filters ...Filter) (*Set, error) {
	s := &Set{byName: make(map[string]Filter, len(filters))}
	for _, f := range filters {
		if err := s.Add(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add validates f and stores it under its name.
func (s *Set) Add(f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if _, dup := s.byName[f.Name]; dup {
		return fmt.Errorf("%w: duplicate name %q", ErrInvalidFilter, f.Name)
	}
	s.byName[f.Name] = f
	s.names = append(s.names, f.Name)
	return nil
}

func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Set) Get(name string) (Filter, error) {
	f, ok := s.byName[name]
	if !ok {
		return Filter{}, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return f, nil
}

// Apply runs the named filter over numbers.
func (s *Set) Apply(name string, numbers []*collatz.Number) ([]*collatz.Number, error) {
	f, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return f.Apply(numbers)
}
