// Package field provides broadcastable N-dimensional float64 arrays used as the
// inputs and outputs of the wind shear calculations.
package field

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when two shapes cannot be broadcast together
	ErrShapeMismatch = errors.New("field: shapes cannot be broadcast")

	// ErrEmpty is returned by reductions over a field with no elements
	ErrEmpty = errors.New("field: zero-size field")

	// ErrUninitialized is returned when the zero Field is used as an operand
	ErrUninitialized = errors.New("field: uninitialized field")

	// ErrTooLarge is returned when a shape holds more than MaxElements elements
	ErrTooLarge = errors.New("field: too many elements")
)

// MaxElements caps the element count of any shape a Field is built with or
// broadcast to
const MaxElements = 1 << 26

// Field is an N-dimensional array of float64 stored in row-major order.
// The zero-dimensional field (empty shape) holds a single scalar.
type Field struct {
	shape []int
	data  []float64
}

// Scalar returns a zero-dimensional field holding v
func Scalar(v float64) Field {
	return Field{shape: []int{}, data: []float64{v}}
}

// FromSlice returns a one-dimensional field backed by a copy of v
func FromSlice(v []float64) Field {
	data := make([]float64, len(v))
	copy(data, v)
	return Field{shape: []int{len(v)}, data: data}
}

// New returns a field with the given shape. The data slice is copied and its
// length must equal the product of the shape.
func New(shape []int, data []float64) (Field, error) {
	n, err := size(shape)
	if err != nil {
		return Field{}, err
	}
	if n != len(data) {
		return Field{}, fmt.Errorf("field: shape %v needs %d values, got %d", shape, n, len(data))
	}

	f := Field{shape: append([]int{}, shape...), data: make([]float64, n)}
	copy(f.data, data)
	return f, nil
}

// Full returns a field of the given shape with every element set to v
func Full(shape []int, v float64) Field {
	n, err := size(shape)
	if err != nil {
		panic(err)
	}
	f := Field{shape: append([]int{}, shape...), data: make([]float64, n)}
	if n > 0 {
		floats.AddConst(v, f.data)
	}
	return f
}

// Dense returns a two-dimensional field as a gonum matrix. One-dimensional
// fields become a single row and scalars a 1x1 matrix.
func (f Field) Dense() (*mat.Dense, error) {
	var r, c int
	switch len(f.shape) {
	case 0:
		r, c = 1, 1
	case 1:
		r, c = 1, f.shape[0]
	case 2:
		r, c = f.shape[0], f.shape[1]
	default:
		return nil, fmt.Errorf("field: cannot view %d-dimensional field as a matrix", len(f.shape))
	}
	if r == 0 || c == 0 {
		return nil, ErrEmpty
	}

	data := make([]float64, len(f.data))
	copy(data, f.data)
	return mat.NewDense(r, c, data), nil
}

// Shape returns a copy of the field's dimensions
func (f Field) Shape() []int {
	return append([]int{}, f.shape...)
}

// Data returns a copy of the field's elements in row-major order
func (f Field) Data() []float64 {
	data := make([]float64, len(f.data))
	copy(data, f.data)
	return data
}

// Len returns the number of elements
func (f Field) Len() int {
	return len(f.data)
}

// IsScalar reports whether f is zero-dimensional
func (f Field) IsScalar() bool {
	return len(f.shape) == 0 && len(f.data) == 1
}

// Value returns the single element of a one-element field
func (f Field) Value() (float64, error) {
	if len(f.data) != 1 {
		return 0, fmt.Errorf("field: shape %v is not a single value", f.shape)
	}
	return f.data[0], nil
}

// HasNaN reports whether any element is NaN
func (f Field) HasNaN() bool {
	return floats.HasNaN(f.data)
}

// Max returns the largest element. NaN propagates: if any element is NaN
// the result is NaN.
func (f Field) Max() (float64, error) {
	if len(f.data) == 0 {
		return 0, ErrEmpty
	}
	if f.HasNaN() {
		return math.NaN(), nil
	}
	return floats.Max(f.data), nil
}

// Min returns the smallest element with the same NaN rule as Max
func (f Field) Min() (float64, error) {
	if len(f.data) == 0 {
		return 0, ErrEmpty
	}
	if f.HasNaN() {
		return math.NaN(), nil
	}
	return floats.Min(f.data), nil
}

// Map returns a new field with fn applied to every element
func (f Field) Map(fn func(float64) float64) Field {
	out := Field{shape: f.Shape(), data: make([]float64, len(f.data))}
	for i, v := range f.data {
		out.data[i] = fn(v)
	}
	return out
}

// Fill returns a field shaped like f with every element set to v
func (f Field) Fill(v float64) Field {
	return Full(f.shape, v)
}

func (f Field) String() string {
	if f.IsScalar() {
		return fmt.Sprint(f.data[0])
	}
	return fmt.Sprintf("%v%v", f.shape, f.data)
}

// valid reports whether the element count matches the shape. The zero
// Field has no shape and no data and is not valid.
func (f Field) valid() bool {
	n, err := size(f.shape)
	return err == nil && n == len(f.data)
}

func size(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("field: negative dimension in shape %v", shape)
		}
		if d == 0 {
			return 0, nil
		}
	}
	for _, d := range shape {
		if n > MaxElements/d {
			return 0, fmt.Errorf("%w: shape %v exceeds %d", ErrTooLarge, shape, MaxElements)
		}
		n *= d
	}
	return n, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
