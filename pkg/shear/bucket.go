package shear

import (
	"math"

	"github.com/chrissnell/windshear/pkg/field"
	"gonum.org/v1/gonum/floats"
)

// LowestBucket is the bucket used whenever the governing gradient holds a NaN
const LowestBucket = 2e-3

// Buckets are the representative shear magnitudes, in s^-1, ordered from
// smallest to largest. The ordering decides ties.
var Buckets = [3]float64{2e-3, 4e-3, 6e-3}

// Selection describes how a bucket was chosen for one calculation
type Selection struct {
	// MaxMagnitude is the maximum of the shear magnitude field (NaN if it held a NaN)
	MaxMagnitude float64 `json:"max_magnitude"`

	// Bucket is the chosen representative magnitude
	Bucket float64 `json:"bucket"`

	// NaNPresent is true when the governing gradient held a NaN and the
	// bucket was forced to LowestBucket
	NaNPresent bool `json:"nan_present"`
}

// SelectBucket picks the bucket nearest to the maximum of magnitude. Ties go
// to the smaller bucket. If governing contains any NaN the choice is
// overridden with LowestBucket.
func SelectBucket(magnitude, governing field.Field) (Selection, error) {
	shearMax, err := magnitude.Max()
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{
		MaxMagnitude: shearMax,
		Bucket:       Buckets[nearestBucket(shearMax)],
	}

	if governing.HasNaN() {
		sel.Bucket = LowestBucket
		sel.NaNPresent = true
	}

	return sel, nil
}

// nearestBucket returns the index of the bucket closest to v. A NaN v
// yields index 0.
func nearestBucket(v float64) int {
	if math.IsNaN(v) {
		return 0
	}

	distance := make([]float64, len(Buckets))
	for i, b := range Buckets {
		distance[i] = math.Abs(b - v)
	}
	return floats.MinIdx(distance)
}
