package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidSelector is matched by *InvalidSelectorError.
var ErrInvalidSelector = errors.New("invalid selector")

// InvalidSelectorError carries a row or column spec that has no known shape.
type InvalidSelectorError struct {
	Axis  Axis
	Value any
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("unknown table %s selector %#v", e.Axis, e.Value)
}

func (e *InvalidSelectorError) Is(target error) bool { return target == ErrInvalidSelector }

// Axis is the coordinate a selector is matched against.
type Axis int

const (
	AxisRow Axis = iota
	AxisColumn
)

func (a Axis) String() string {
	if a == AxisColumn {
		return "column"
	}
	return "row"
}

func (a Axis) coord(c *Cell) int {
	if a == AxisColumn {
		return c.Column()
	}
	return c.Row()
}

// Selector decides whether a cell belongs to a selection. coord is the
// cell's row or column, last the largest such coordinate in the selection
// being narrowed.
type Selector interface {
	Match(c *Cell, coord, last int) bool
}

// Index matches a single row or column.
type Index int

func (i Index) Match(_ *Cell, coord, _ int) bool { return coord == int(i) }

// Span matches Lo through Hi inclusive.
type Span struct {
	Lo, Hi int
}

func (s Span) Match(_ *Cell, coord, _ int) bool { return s.Lo <= coord && coord <= s.Hi }

// List matches any of its coordinates.
type List []int

func (l List) Match(_ *Cell, coord, _ int) bool { return slices.Contains(l, coord) }

// Keyword is one of the named selectors.
type Keyword int

const (
	All Keyword = iota
	Even
	Odd
	Last
)

func (k Keyword) Match(_ *Cell, coord, last int) bool {
	switch k {
	case Even:
		return coord%2 == 0
	case Odd:
		return coord%2 == 1
	case Last:
		return coord == last
	default:
		return true
	}
}

func (k Keyword) String() string {
	switch k {
	case Even:
		return "even"
	case Odd:
		return "odd"
	case Last:
		return "last"
	default:
		return "all"
	}
}

// ParseKeyword reads "all", "even", "odd" or "last".
func ParseKeyword(v string) (Keyword, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "all":
		return All, true
	case "even":
		return Even, true
	case "odd":
		return Odd, true
	case "last":
		return Last, true
	}
	return 0, false
}

// Default striping parameters.
const (
	DefaultStripes   = 200
	DefaultThickness = 1
)

// Stripes selects bands of Thickness coordinates, Step apart, starting at
// Offset, at most Stripes bands. In a Stripes literal zero fields take
// their defaults and Step defaults to twice the thickness. Stripes built
// from a map only default the keys the map leaves out, so an explicit
// zero count or thickness selects nothing.
type Stripes struct {
	Stripes   int
	Thickness int
	Step      int
	Offset    int

	exact bool
}

func (s Stripes) normalized() Stripes {
	if s.exact {
		return s
	}
	if s.Stripes <= 0 {
		s.Stripes = DefaultStripes
	}
	if s.Thickness <= 0 {
		s.Thickness = DefaultThickness
	}
	if s.Step <= 0 {
		s.Step = 2 * s.Thickness
	}
	return s
}

func (s Stripes) empty() bool { return s.Stripes <= 0 || s.Thickness <= 0 }

// Coordinates lists the allowed coordinates in band order.
func (s Stripes) Coordinates() []int {
	s = s.normalized()
	if s.empty() {
		return nil
	}
	out := make([]int, 0, s.Stripes*s.Thickness)
	for x := 0; x < s.Stripes; x++ {
		for t := 0; t < s.Thickness; t++ {
			out = append(out, s.Offset+x*s.Step+t)
		}
	}
	return out
}

func (s Stripes) Match(_ *Cell, coord, _ int) bool {
	s = s.normalized()
	if s.empty() {
		return false
	}
	// Bands wider than the step overlap; fall back to the explicit set.
	if s.Step <= 0 || s.Thickness > s.Step {
		return slices.Contains(s.Coordinates(), coord)
	}
	rel := coord - s.Offset
	if rel < 0 {
		return false
	}
	x, t := rel/s.Step, rel%s.Step
	return x < s.Stripes && t < s.Thickness
}

// Predicate matches the cells it returns true for.
type Predicate func(c *Cell) bool

func (p Predicate) Match(c *Cell, _, _ int) bool { return p(c) }

// ParseSelector turns a spec value into a Selector. Accepted shapes:
// Selector, int, [2]int (inclusive span), []int, "even", "odd", "last",
// "all", map[string]int with stripes/thickness/step/offset keys, and
// func(*Cell) bool.
func ParseSelector(axis Axis, spec any) (Selector, error) {
	switch v := spec.(type) {
	case Predicate:
		if v != nil {
			return v, nil
		}
	case Selector:
		return v, nil
	case int:
		return Index(v), nil
	case [2]int:
		return Span{Lo: v[0], Hi: v[1]}, nil
	case []int:
		return List(slices.Clone(v)), nil
	case string:
		if k, ok := ParseKeyword(v); ok {
			return k, nil
		}
	case map[string]int:
		return stripesFromMap(axis, v)
	case func(*Cell) bool:
		if v != nil {
			return Predicate(v), nil
		}
	}
	return nil, &InvalidSelectorError{Axis: axis, Value: spec}
}

func stripesFromMap(axis Axis, m map[string]int) (Selector, error) {
	s := Stripes{Stripes: DefaultStripes, Thickness: DefaultThickness, exact: true}
	step, hasStep := m["step"]
	for k, v := range m {
		switch k {
		case "stripes":
			s.Stripes = v
		case "thickness":
			s.Thickness = v
		case "step":
		case "offset":
			s.Offset = v
		default:
			return nil, &InvalidSelectorError{Axis: axis, Value: m}
		}
	}
	s.Step = 2 * s.Thickness
	if hasStep {
		s.Step = step
	}
	return s, nil
}
