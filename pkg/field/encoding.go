package field

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Nested returns the field as a float64 (scalars) or nested []any lists
// suitable for JSON and MessagePack encoders.
func (f Field) Nested() any {
	if len(f.shape) == 0 {
		if len(f.data) == 0 {
			return nil
		}
		return f.data[0]
	}
	v, _ := nest(f.shape, f.data)
	return v
}

func nest(shape []int, data []float64) (any, int) {
	if len(shape) == 1 {
		out := make([]any, shape[0])
		for i := range out {
			out[i] = data[i]
		}
		return out, shape[0]
	}

	out := make([]any, shape[0])
	used := 0
	for i := range out {
		v, n := nest(shape[1:], data[used:])
		out[i] = v
		used += n
	}
	return out, used
}

// MarshalJSON encodes the field as a number or nested lists
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Nested())
}

// UnmarshalJSON accepts a number, a (nested) list of numbers, or an object
// of the form {"shape": [...], "data": [...]}.
func (f *Field) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := parse(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same forms as UnmarshalJSON
func (f *Field) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := parse(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func parse(raw any) (Field, error) {
	switch v := raw.(type) {
	case []any:
		shape, err := shapeOf(v)
		if err != nil {
			return Field{}, err
		}
		data := make([]float64, 0)
		data, err = flatten(v, data)
		if err != nil {
			return Field{}, err
		}
		return Field{shape: shape, data: data}, nil
	case map[string]any:
		return parseObject(v["shape"], v["data"])
	case map[any]any:
		return parseObject(v["shape"], v["data"])
	default:
		n, err := number(raw)
		if err != nil {
			return Field{}, err
		}
		return Scalar(n), nil
	}
}

func parseObject(rawShape, rawData any) (Field, error) {
	shapeList, ok := rawShape.([]any)
	if !ok {
		return Field{}, fmt.Errorf("field: object form needs a shape list")
	}
	dataList, ok := rawData.([]any)
	if !ok {
		return Field{}, fmt.Errorf("field: object form needs a data list")
	}

	shape := make([]int, len(shapeList))
	for i, s := range shapeList {
		n, err := number(s)
		if err != nil {
			return Field{}, fmt.Errorf("field: bad shape: %w", err)
		}
		if n < 0 || n != math.Trunc(n) || n > MaxElements {
			return Field{}, fmt.Errorf("field: bad shape: dimension %v is not a length", s)
		}
		shape[i] = int(n)
	}
	data, err := flatten(dataList, make([]float64, 0, len(dataList)))
	if err != nil {
		return Field{}, err
	}
	return New(shape, data)
}

// shapeOf walks the first element at every depth and checks that every
// sibling list has the same length.
func shapeOf(v []any) ([]int, error) {
	shape := []int{len(v)}
	if len(v) == 0 {
		return shape, nil
	}

	first, isList := v[0].([]any)
	if !isList {
		for _, e := range v {
			if _, nested := e.([]any); nested {
				return nil, fmt.Errorf("field: ragged nested list")
			}
		}
		return shape, nil
	}

	inner, err := shapeOf(first)
	if err != nil {
		return nil, err
	}
	for _, e := range v[1:] {
		l, ok := e.([]any)
		if !ok {
			return nil, fmt.Errorf("field: ragged nested list")
		}
		s, err := shapeOf(l)
		if err != nil {
			return nil, err
		}
		if !sameShape(s, inner) {
			return nil, fmt.Errorf("field: ragged nested list")
		}
	}
	return append(shape, inner...), nil
}

func flatten(v []any, dst []float64) ([]float64, error) {
	for _, e := range v {
		if l, ok := e.([]any); ok {
			var err error
			dst, err = flatten(l, dst)
			if err != nil {
				return nil, err
			}
			continue
		}
		n, err := number(e)
		if err != nil {
			return nil, err
		}
		dst = append(dst, n)
	}
	return dst, nil
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		// "NaN", "Inf" and "-Inf" have no JSON literal
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("field: %v (%T) is not a number", v, v)
	}
}
