package field

import (
	"fmt"
)

// BroadcastShapes returns the shape that results from broadcasting all of the
// given shapes together. Dimensions are aligned from the right and a dimension
// of length 1 stretches to match the other operand. Shapes holding more than
// MaxElements elements are rejected with ErrTooLarge.
func BroadcastShapes(shapes ...[]int) ([]int, error) {
	ndim := 0
	for _, s := range shapes {
		if len(s) > ndim {
			ndim = len(s)
		}
	}

	out := make([]int, ndim)
	for i := range out {
		out[i] = 1
	}

	for _, s := range shapes {
		offset := ndim - len(s)
		for i, d := range s {
			j := offset + i
			switch {
			case d == out[j]:
			case out[j] == 1:
				out[j] = d
			case d == 1:
			default:
				return nil, fmt.Errorf("%w: %v against %v", ErrShapeMismatch, s, out)
			}
		}
	}

	if _, err := size(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply combines a and b elementwise after broadcasting them to a common shape
func Apply(a, b Field, fn func(x, y float64) float64) (Field, error) {
	if !a.valid() || !b.valid() {
		return Field{}, ErrUninitialized
	}
	shape, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return Field{}, err
	}

	n, err := size(shape)
	if err != nil {
		return Field{}, err
	}
	out := Field{shape: shape, data: make([]float64, n)}
	if sameShape(a.shape, shape) && sameShape(b.shape, shape) {
		for i := range out.data {
			out.data[i] = fn(a.data[i], b.data[i])
		}
		return out, nil
	}

	sa := broadcastStrides(a.shape, shape)
	sb := broadcastStrides(b.shape, shape)
	index := make([]int, len(shape))
	for i := 0; i < n; i++ {
		out.data[i] = fn(a.data[offsetOf(index, sa)], b.data[offsetOf(index, sb)])
		next(index, shape)
	}
	return out, nil
}

// Sub returns a - b
func Sub(a, b Field) (Field, error) {
	return Apply(a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns a * b
func Mul(a, b Field) (Field, error) {
	return Apply(a, b, func(x, y float64) float64 { return x * y })
}

// Div returns a / b. Division by zero follows IEEE 754.
func Div(a, b Field) (Field, error) {
	return Apply(a, b, func(x, y float64) float64 { return x / y })
}

// broadcastStrides returns the row-major strides of src laid over the target
// shape, with 0 for every stretched or missing dimension.
func broadcastStrides(src, target []int) []int {
	strides := make([]int, len(target))
	offset := len(target) - len(src)
	stride := 1
	for i := len(src) - 1; i >= 0; i-- {
		if src[i] != 1 {
			strides[offset+i] = stride
		}
		stride *= src[i]
	}
	return strides
}

func offsetOf(index, strides []int) int {
	off := 0
	for i, v := range index {
		off += v * strides[i]
	}
	return off
}

// next advances a row-major multi-index
func next(index, shape []int) {
	for i := len(index) - 1; i >= 0; i-- {
		index[i]++
		if index[i] < shape[i] {
			return
		}
		index[i] = 0
	}
}
