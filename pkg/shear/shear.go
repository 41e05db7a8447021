// Package shear computes the vertical wind shear inputs of the contrail
// evolution model: total shear, shear normal to a contrail axis, and the
// sub-grid-scale enhancement factor.
//
// Both shear calculators discretize their result. The maximum shear
// magnitude picks one of three representative buckets and the whole output
// field is filled with that bucket.
package shear

import (
	"fmt"
	"math"
	"os"

	"github.com/chrissnell/windshear/pkg/field"
)

const (
	// TotalLabel prefixes the total shear diagnostic
	TotalLabel = "Shear : "

	// NormalLabel prefixes the normal shear diagnostic
	NormalLabel = "NORMAL shear: "

	// NaNRemovedNotice is sent to a Notifier when the normal shear NaN
	// override fires
	NaNRemovedNotice = "Removed NaN!"
)

// Result is the output of a shear calculation together with the bucket selection
type Result struct {
	Shear     field.Field
	Selection Selection
}

// Calculator runs the shear calculations and sends diagnostics to its Reporter.
// A Calculator holds no mutable state and is safe for concurrent use as long
// as its Reporter is.
type Calculator struct {
	reporter Reporter
}

// NewCalculator returns a Calculator reporting to r. A nil r discards diagnostics.
func NewCalculator(r Reporter) *Calculator {
	if r == nil {
		r = NopReporter{}
	}
	return &Calculator{reporter: r}
}

var defaultCalculator = NewCalculator(NewWriterReporter(os.Stdout))

// WindShear computes total wind shear with diagnostics written to stdout
func WindShear(uTop, uBtm, vTop, vBtm field.Field, dz float64) (field.Field, error) {
	return defaultCalculator.WindShear(uTop, uBtm, vTop, vBtm, dz)
}

// WindShearNormal computes wind shear normal to an axis with diagnostics
// written to stdout
func WindShearNormal(uTop, uBtm, vTop, vBtm, cosA, sinA field.Field, dz float64) (field.Field, error) {
	return defaultCalculator.WindShearNormal(uTop, uBtm, vTop, vBtm, cosA, sinA, dz)
}

// WindShear returns the total vertical shear of the horizontal wind, in s^-1,
// between two levels dz metres apart. Every element of the result holds the
// selected bucket.
func (c *Calculator) WindShear(uTop, uBtm, vTop, vBtm field.Field, dz float64) (field.Field, error) {
	res, err := c.WindShearDetail(uTop, uBtm, vTop, vBtm, dz)
	if err != nil {
		return field.Field{}, err
	}
	return res.Shear, nil
}

// WindShearDetail is WindShear returning the bucket selection as well
func (c *Calculator) WindShearDetail(uTop, uBtm, vTop, vBtm field.Field, dz float64) (Result, error) {
	duDz, dvDz, err := gradients(uTop, uBtm, vTop, vBtm, dz)
	if err != nil {
		return Result{}, err
	}

	dsDz, err := magnitude(duDz, dvDz)
	if err != nil {
		return Result{}, err
	}

	sel, err := SelectBucket(dsDz, dsDz)
	if err != nil {
		return Result{}, fmt.Errorf("selecting shear bucket: %w", err)
	}

	out := fillWithBucket(dsDz, sel.Bucket)
	c.report(TotalLabel, out, sel)

	return Result{Shear: out, Selection: sel}, nil
}

// WindShearNormal returns the vertical shear of the wind component normal to
// the axis with direction cosines (cosA, sinA). Every element of the result
// holds the negative of the selected bucket. The bucket is chosen from the
// total shear magnitude; the NaN check runs on the normal component.
func (c *Calculator) WindShearNormal(uTop, uBtm, vTop, vBtm, cosA, sinA field.Field, dz float64) (field.Field, error) {
	res, err := c.WindShearNormalDetail(uTop, uBtm, vTop, vBtm, cosA, sinA, dz)
	if err != nil {
		return field.Field{}, err
	}
	return res.Shear, nil
}

// WindShearNormalDetail is WindShearNormal returning the bucket selection as well
func (c *Calculator) WindShearNormalDetail(uTop, uBtm, vTop, vBtm, cosA, sinA field.Field, dz float64) (Result, error) {
	duDz, dvDz, err := gradients(uTop, uBtm, vTop, vBtm, dz)
	if err != nil {
		return Result{}, err
	}

	// dsn_dz = dv_dz*cos_a - du_dz*sin_a
	dvCos, err := field.Mul(dvDz, cosA)
	if err != nil {
		return Result{}, fmt.Errorf("projecting v gradient: %w", err)
	}
	duSin, err := field.Mul(duDz, sinA)
	if err != nil {
		return Result{}, fmt.Errorf("projecting u gradient: %w", err)
	}
	dsnDz, err := field.Sub(dvCos, duSin)
	if err != nil {
		return Result{}, fmt.Errorf("projecting gradient: %w", err)
	}

	dsDz, err := magnitude(duDz, dvDz)
	if err != nil {
		return Result{}, err
	}

	sel, err := SelectBucket(dsDz, dsnDz)
	if err != nil {
		return Result{}, fmt.Errorf("selecting shear bucket: %w", err)
	}

	if sel.NaNPresent {
		c.notify(NaNRemovedNotice)
	}

	out := fillWithBucket(dsnDz, -sel.Bucket)
	c.report(NormalLabel, out, sel)

	return Result{Shear: out, Selection: sel}, nil
}

// fillWithBucket replaces every element of the computed gradient with the
// bucket value. The per-element gradients only ever decide the bucket.
func fillWithBucket(gradient field.Field, bucket float64) field.Field {
	return gradient.Fill(bucket)
}

func (c *Calculator) report(label string, out field.Field, sel Selection) {
	if sel.Bucket == LowestBucket && !sel.NaNPresent {
		return
	}
	minShear, err := out.Min()
	if err != nil {
		return
	}
	c.reporter.Report(label, minShear)
}

func (c *Calculator) notify(msg string) {
	if n, ok := c.reporter.(Notifier); ok {
		n.Notify(msg)
	}
}

// gradients returns du/dz and dv/dz across the layer
func gradients(uTop, uBtm, vTop, vBtm field.Field, dz float64) (field.Field, field.Field, error) {
	du, err := field.Sub(uTop, uBtm)
	if err != nil {
		return field.Field{}, field.Field{}, fmt.Errorf("u wind difference: %w", err)
	}
	dv, err := field.Sub(vTop, vBtm)
	if err != nil {
		return field.Field{}, field.Field{}, fmt.Errorf("v wind difference: %w", err)
	}

	perMetre := func(v float64) float64 { return v / dz }
	return du.Map(perMetre), dv.Map(perMetre), nil
}

// magnitude returns sqrt(du_dz^2 + dv_dz^2)
func magnitude(duDz, dvDz field.Field) (field.Field, error) {
	ds, err := field.Apply(duDz, dvDz, func(du, dv float64) float64 {
		return math.Sqrt(du*du + dv*dv)
	})
	if err != nil {
		return field.Field{}, fmt.Errorf("shear magnitude: %w", err)
	}
	return ds, nil
}
