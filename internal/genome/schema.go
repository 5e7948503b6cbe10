package genome

import (
	"errors"
	"fmt"
	"math"
)

// Kind tags the static type of one gene position.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ErrSchema is the root of every prototype, bounds or base-population
// shape/type mismatch. Match with errors.Is.
var ErrSchema = errors.New("genome: schema violation")

// Default sampling range used for int and float positions without
// explicit bounds.
const (
	DefaultLow  = -1.0
	DefaultHigh = 1.0
)

// Bounds is an inclusive [Low, High] range for one gene position.
type Bounds struct {
	Low  float64
	High float64
}

func (b Bounds) Width() float64 {
	return b.High - b.Low
}

func (b Bounds) Clamp(v float64) float64 {
	if v < b.Low {
		return b.Low
	}
	if v > b.High {
		return b.High
	}
	return v
}

func (b Bounds) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// Schema is the fixed per-position type/bounds template shared by every
// individual of a population. It is built once from a prototype and is
// immutable afterwards; all operators dispatch on it instead of
// inspecting gene values at run time.
type Schema struct {
	kinds   []Kind
	bounds  []Bounds
	bounded bool
}

// NewSchema derives a schema from a prototype value sequence and an
// optional bounds sequence of equal length. Prototype values are used
// only to infer the kind of each position: bool, int and float64 are
// accepted. A nil bounds sequence leaves every position unbounded;
// sampling then falls back to [DefaultLow, DefaultHigh].
func NewSchema(prototype []any, bounds []Bounds) (*Schema, error) {
	if len(prototype) == 0 {
		return nil, fmt.Errorf("%w: empty prototype", ErrSchema)
	}
	if bounds != nil && len(bounds) != len(prototype) {
		return nil, fmt.Errorf("%w: bounds length %d != prototype length %d", ErrSchema, len(bounds), len(prototype))
	}

	s := &Schema{
		kinds:   make([]Kind, len(prototype)),
		bounds:  make([]Bounds, len(prototype)),
		bounded: bounds != nil,
	}
	for i, v := range prototype {
		switch v.(type) {
		case bool:
			s.kinds[i] = KindBool
		case int:
			s.kinds[i] = KindInt
		case float64:
			s.kinds[i] = KindFloat
		default:
			return nil, fmt.Errorf("%w: prototype gene %d must be bool, int or float64, got %T", ErrSchema, i, v)
		}
	}
	for i := range s.bounds {
		if bounds == nil {
			s.bounds[i] = Bounds{Low: DefaultLow, High: DefaultHigh}
			continue
		}
		if bounds[i].Low > bounds[i].High {
			return nil, fmt.Errorf("%w: inverted bounds [%g, %g] at position %d", ErrSchema, bounds[i].Low, bounds[i].High, i)
		}
		// An int position must be able to hold at least one value.
		if s.kinds[i] == KindInt && math.Ceil(bounds[i].Low) > math.Floor(bounds[i].High) {
			return nil, fmt.Errorf("%w: bounds [%g, %g] at position %d contain no integer", ErrSchema, bounds[i].Low, bounds[i].High, i)
		}
		s.bounds[i] = bounds[i]
	}
	return s, nil
}

func (s *Schema) Len() int {
	return len(s.kinds)
}

func (s *Schema) KindAt(i int) Kind {
	return s.kinds[i]
}

// BoundsAt returns the sampling range of position i and whether it was
// explicitly supplied. Without explicit bounds the default range is
// returned and mutation does not clamp.
func (s *Schema) BoundsAt(i int) (Bounds, bool) {
	return s.bounds[i], s.bounded
}

// Bounded reports whether the schema carries caller-supplied bounds.
func (s *Schema) Bounded() bool {
	return s.bounded
}

// Compatible reports whether two schemas describe the same genome shape:
// equal length and equal kind at every position. Bounds may differ.
func (s *Schema) Compatible(other *Schema) bool {
	if other == nil || len(s.kinds) != len(other.kinds) {
		return false
	}
	for i, k := range s.kinds {
		if other.kinds[i] != k {
			return false
		}
	}
	return true
}

// Validate checks a raw gene sequence against the schema: exact length,
// per-position kind (bool genes are 0/1, int genes integral) and, when
// explicit bounds are present, containment.
func (s *Schema) Validate(genes []float64) error {
	if len(genes) != len(s.kinds) {
		return fmt.Errorf("%w: genome length %d != schema length %d", ErrSchema, len(genes), len(s.kinds))
	}
	for i, g := range genes {
		switch s.kinds[i] {
		case KindBool:
			if g != 0 && g != 1 {
				return fmt.Errorf("%w: position %d is bool, got %g", ErrSchema, i, g)
			}
		case KindInt:
			if g != float64(int64(g)) {
				return fmt.Errorf("%w: position %d is int, got %g", ErrSchema, i, g)
			}
			if s.bounded && !s.bounds[i].Contains(g) {
				return fmt.Errorf("%w: position %d value %g outside [%g, %g]", ErrSchema, i, g, s.bounds[i].Low, s.bounds[i].High)
			}
		case KindFloat:
			if s.bounded && !s.bounds[i].Contains(g) {
				return fmt.Errorf("%w: position %d value %g outside [%g, %g]", ErrSchema, i, g, s.bounds[i].Low, s.bounds[i].High)
			}
		}
	}
	return nil
}

// Value renders gene i of a raw sequence as its schema type: bool, int
// or float64.
func (s *Schema) Value(genes []float64, i int) any {
	switch s.kinds[i] {
	case KindBool:
		return genes[i] != 0
	case KindInt:
		return int(genes[i])
	default:
		return genes[i]
	}
}

// Bool reads gene i of a raw sequence as a bool.
func (s *Schema) Bool(genes []float64, i int) (bool, error) {
	if s.kinds[i] != KindBool {
		return false, fmt.Errorf("%w: position %d is %s, not bool", ErrSchema, i, s.kinds[i])
	}
	return genes[i] != 0, nil
}

// Int reads gene i of a raw sequence as an int.
func (s *Schema) Int(genes []float64, i int) (int, error) {
	if s.kinds[i] != KindInt {
		return 0, fmt.Errorf("%w: position %d is %s, not int", ErrSchema, i, s.kinds[i])
	}
	return int(genes[i]), nil
}

// Float reads gene i of a raw sequence as a float64.
func (s *Schema) Float(genes []float64, i int) (float64, error) {
	if s.kinds[i] != KindFloat {
		return 0, fmt.Errorf("%w: position %d is %s, not float", ErrSchema, i, s.kinds[i])
	}
	return genes[i], nil
}

// Raw converts a typed gene value to its float64 representation,
// checking it against the kind of position i.
func (s *Schema) Raw(i int, v any) (float64, error) {
	switch value := v.(type) {
	case bool:
		if s.kinds[i] != KindBool {
			return 0, fmt.Errorf("%w: position %d is %s, got bool", ErrSchema, i, s.kinds[i])
		}
		if value {
			return 1, nil
		}
		return 0, nil
	case int:
		if s.kinds[i] != KindInt {
			return 0, fmt.Errorf("%w: position %d is %s, got int", ErrSchema, i, s.kinds[i])
		}
		return float64(value), nil
	case float64:
		if s.kinds[i] != KindFloat {
			return 0, fmt.Errorf("%w: position %d is %s, got float64", ErrSchema, i, s.kinds[i])
		}
		return value, nil
	default:
		return 0, fmt.Errorf("%w: position %d: unsupported gene value %T", ErrSchema, i, v)
	}
}
