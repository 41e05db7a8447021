package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chrissnell/windshear/internal/log"
	"github.com/chrissnell/windshear/pkg/field"
	"github.com/chrissnell/windshear/pkg/shear"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v2"
)

// Profile is a two-level wind sample read from YAML. The axis and
// enhancement inputs are optional; their calculations run only when every
// input of the group is present.
type Profile struct {
	UTop *field.Field `yaml:"u_top"`
	UBtm *field.Field `yaml:"u_btm"`
	VTop *field.Field `yaml:"v_top"`
	VBtm *field.Field `yaml:"v_btm"`
	Dz   float64      `yaml:"dz"`

	CosA *field.Field `yaml:"cos_a,omitempty"`
	SinA *field.Field `yaml:"sin_a,omitempty"`

	ContrailDepth               *field.Field `yaml:"contrail_depth,omitempty"`
	EffectiveVerticalResolution *field.Field `yaml:"effective_vertical_resolution,omitempty"`
	Exponent                    *field.Field `yaml:"exponent,omitempty"`
}

// Output is printed as JSON, or as matrices with -format matrix
type Output struct {
	Shear             any      `json:"shear"`
	ShearNormal       any      `json:"shear_normal,omitempty"`
	EnhancementFactor *float64 `json:"enhancement_factor,omitempty"`

	total  field.Field
	normal *field.Field
}

func loadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseProfile(b)
}

func parseProfile(b []byte) (*Profile, error) {
	p := &Profile{}
	if err := yaml.UnmarshalStrict(b, p); err != nil {
		return nil, fmt.Errorf("error parsing profile: %w", err)
	}

	switch {
	case p.UTop == nil, p.UBtm == nil, p.VTop == nil, p.VBtm == nil:
		return nil, fmt.Errorf("profile needs u_top, u_btm, v_top and v_btm")
	case p.Dz == 0:
		// a zero layer depth is legal but usually a missing key
		log.Warnf("dz is 0; shear will fall back to the lowest bucket")
	}
	if (p.CosA == nil) != (p.SinA == nil) {
		return nil, fmt.Errorf("profile needs both cos_a and sin_a, or neither")
	}
	return p, nil
}

func (p *Profile) hasAxis() bool {
	return p.CosA != nil && p.SinA != nil
}

func (p *Profile) hasEnhancement() bool {
	return p.ContrailDepth != nil && p.EffectiveVerticalResolution != nil && p.Exponent != nil
}

func run(p *Profile, calc *shear.Calculator) (Output, error) {
	var out Output

	total, err := calc.WindShear(*p.UTop, *p.UBtm, *p.VTop, *p.VBtm, p.Dz)
	if err != nil {
		return out, fmt.Errorf("total shear: %w", err)
	}
	out.Shear = total.Nested()
	out.total = total

	if p.hasAxis() {
		normal, err := calc.WindShearNormal(*p.UTop, *p.UBtm, *p.VTop, *p.VBtm, *p.CosA, *p.SinA, p.Dz)
		if err != nil {
			return out, fmt.Errorf("normal shear: %w", err)
		}
		out.ShearNormal = normal.Nested()
		out.normal = &normal
	}

	if p.hasEnhancement() {
		f := shear.EnhancementFactor(*p.ContrailDepth, *p.EffectiveVerticalResolution, *p.Exponent)
		out.EnhancementFactor = &f
	}

	return out, nil
}

// writeMatrix prints each shear grid as an aligned gonum matrix
func writeMatrix(w io.Writer, out Output) error {
	grids := []struct {
		name string
		f    *field.Field
	}{
		{name: "shear", f: &out.total},
		{name: "shear_normal", f: out.normal},
	}

	for _, g := range grids {
		if g.f == nil {
			continue
		}
		m, err := g.f.Dense()
		if err != nil {
			return fmt.Errorf("%s: %w", g.name, err)
		}
		fmt.Fprintf(w, "%s =\n%v\n", g.name, mat.Formatted(m, mat.Prefix("  "), mat.Squeeze()))
	}

	if out.EnhancementFactor != nil {
		fmt.Fprintf(w, "enhancement_factor = %v\n", *out.EnhancementFactor)
	}
	return nil
}
