package column

import (
	"errors"
	"fmt"
	"slices"
)

// Set is an ordered collection of columns with unique names.
// The zero value is empty and ready to use.
type Set[T any] struct {
	cols []*Column[T]
}

// NewSet validates and adds every column in order.
func NewSet[T any](cols ...*Column[T]) (*Set[T], error) {
	s := &Set[T]{}
	for _, c := range cols {
		if err := s.Add(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ErrDuplicate is wrapped by Add when a column name is already taken.
var ErrDuplicate = errors.New("duplicate column")

// Add appends a column. The name must be unused.
func (s *Set[T]) Add(c *Column[T]) error {
	if c == nil {
		return errors.New("column is nil")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if _, ok := s.Lookup(c.Name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, c.Name)
	}
	s.cols = append(s.cols, c)
	return nil
}

// Remove drops the named column and reports whether it was present.
func (s *Set[T]) Remove(name string) bool {
	i := slices.IndexFunc(s.cols, func(c *Column[T]) bool { return c.Name == name })
	if i < 0 {
		return false
	}
	s.cols = slices.Delete(s.cols, i, i+1)
	return true
}

// Lookup finds a column by name.
func (s *Set[T]) Lookup(name string) (*Column[T], bool) {
	for _, c := range s.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// All returns the columns in declaration order.
func (s *Set[T]) All() []*Column[T] {
	return slices.Clone(s.cols)
}

// Names returns the column names in declaration order.
func (s *Set[T]) Names() []string {
	names := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of columns.
func (s *Set[T]) Len() int { return len(s.cols) }
