package shear

import (
	"fmt"
	"math"

	"github.com/chrissnell/windshear/pkg/field"
)

// EnhancementFactor returns the multiplier applied to resolved wind shear to
// account for sub-grid-scale shear, given contrail depth and the effective
// vertical resolution of the met data (both m) and a nonnegative exponent.
//
// The factor is pinned to 1.0: EnhancementFactorFormula is evaluated but its
// value does not reach the caller.
func EnhancementFactor(contrailDepth, effectiveVerticalResolution, exponent field.Field) float64 {
	_, _ = EnhancementFactorFormula(contrailDepth, effectiveVerticalResolution, exponent)
	return 1.0
}

// EnhancementFactorFormula evaluates 0.5 * (1 + (resolution/depth)^exponent),
// eq. (39) of Schumann (2012).
func EnhancementFactorFormula(contrailDepth, effectiveVerticalResolution, exponent field.Field) (field.Field, error) {
	ratio, err := field.Div(effectiveVerticalResolution, contrailDepth)
	if err != nil {
		return field.Field{}, fmt.Errorf("resolution to depth ratio: %w", err)
	}

	factor, err := field.Apply(ratio, exponent, func(r, n float64) float64 {
		return 0.5 * (1.0 + math.Pow(r, n))
	})
	if err != nil {
		return field.Field{}, fmt.Errorf("enhancement exponent: %w", err)
	}
	return factor, nil
}
