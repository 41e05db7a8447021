package restserver

import (
	"math"

	"github.com/chrissnell/windshear/pkg/field"
	"github.com/chrissnell/windshear/pkg/shear"
)

// WindShearRequest carries the wind components at the top and bottom of a
// layer dz metres deep
type WindShearRequest struct {
	UTop *field.Field `json:"u_top"`
	UBtm *field.Field `json:"u_btm"`
	VTop *field.Field `json:"v_top"`
	VBtm *field.Field `json:"v_btm"`
	Dz   *float64     `json:"dz"`
}

// WindShearNormalRequest adds the axis direction cosines to WindShearRequest
type WindShearNormalRequest struct {
	WindShearRequest
	CosA *field.Field `json:"cos_a"`
	SinA *field.Field `json:"sin_a"`
}

// EnhancementRequest carries the inputs of the enhancement factor
type EnhancementRequest struct {
	ContrailDepth               *field.Field `json:"contrail_depth"`
	EffectiveVerticalResolution *field.Field `json:"effective_vertical_resolution"`
	Exponent                    *field.Field `json:"exponent"`
}

// ShearResponse is returned by both shear endpoints
type ShearResponse struct {
	RequestID string        `json:"request_id"`
	Shape     []int         `json:"shape"`
	Shear     any           `json:"shear"`
	Selection SelectionInfo `json:"selection"`
}

// SelectionInfo mirrors shear.Selection with non-finite maxima omitted,
// since JSON has no NaN or Inf literal
type SelectionInfo struct {
	MaxMagnitude *float64 `json:"max_magnitude,omitempty"`
	Bucket       float64  `json:"bucket"`
	NaNPresent   bool     `json:"nan_present"`
}

// EnhancementResponse is returned by the enhancement endpoint
type EnhancementResponse struct {
	RequestID         string  `json:"request_id"`
	EnhancementFactor float64 `json:"enhancement_factor"`
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status string `json:"status"`
}

func newShearResponse(id string, res shear.Result) ShearResponse {
	info := SelectionInfo{
		Bucket:     res.Selection.Bucket,
		NaNPresent: res.Selection.NaNPresent,
	}
	if m := res.Selection.MaxMagnitude; !math.IsNaN(m) && !math.IsInf(m, 0) {
		info.MaxMagnitude = &m
	}

	return ShearResponse{
		RequestID: id,
		Shape:     res.Shear.Shape(),
		Shear:     res.Shear.Nested(),
		Selection: info,
	}
}

// missing returns the JSON name of the first absent field, or ""
func (r WindShearRequest) missing() string {
	switch {
	case r.UTop == nil:
		return "u_top"
	case r.UBtm == nil:
		return "u_btm"
	case r.VTop == nil:
		return "v_top"
	case r.VBtm == nil:
		return "v_btm"
	case r.Dz == nil:
		return "dz"
	}
	return ""
}

func (r WindShearNormalRequest) missing() string {
	if m := r.WindShearRequest.missing(); m != "" {
		return m
	}
	switch {
	case r.CosA == nil:
		return "cos_a"
	case r.SinA == nil:
		return "sin_a"
	}
	return ""
}

func (r EnhancementRequest) missing() string {
	switch {
	case r.ContrailDepth == nil:
		return "contrail_depth"
	case r.EffectiveVerticalResolution == nil:
		return "effective_vertical_resolution"
	case r.Exponent == nil:
		return "exponent"
	}
	return ""
}
