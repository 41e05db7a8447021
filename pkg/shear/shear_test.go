package shear

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/chrissnell/windshear/pkg/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type report struct {
	label string
	value float64
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []report
	notices []string
}

func (r *recordingReporter) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, msg)
}

func (r *recordingReporter) Report(label string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{label: label, value: value})
}

func vec(v ...float64) field.Field {
	return field.FromSlice(v)
}

func zeros(n int) field.Field {
	return field.Full([]int{n}, 0)
}

func TestWindShearExample(t *testing.T) {
	rec := &recordingReporter{}
	calc := NewCalculator(rec)

	res, err := calc.WindShearDetail(vec(5, 10), zeros(2), zeros(2), zeros(2), 1000)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, res.Shear.Shape())
	assert.Equal(t, []float64{0.006, 0.006}, res.Shear.Data())
	assert.InDelta(t, 0.01, res.Selection.MaxMagnitude, 1e-12)
	assert.Equal(t, 0.006, res.Selection.Bucket)
	assert.False(t, res.Selection.NaNPresent)

	require.Len(t, rec.reports, 1)
	assert.Equal(t, TotalLabel, rec.reports[0].label)
	assert.Equal(t, 0.006, rec.reports[0].value)
}

func TestWindShearNormalExample(t *testing.T) {
	rec := &recordingReporter{}
	calc := NewCalculator(rec)

	res, err := calc.WindShearNormalDetail(vec(5, 10), zeros(2), zeros(2), zeros(2),
		field.Scalar(1), field.Scalar(0), 1000)
	require.NoError(t, err)

	assert.Equal(t, []float64{-0.006, -0.006}, res.Shear.Data())
	assert.Equal(t, 0.006, res.Selection.Bucket)
	assert.False(t, res.Selection.NaNPresent)

	require.Len(t, rec.reports, 1)
	assert.Equal(t, NormalLabel, rec.reports[0].label)
	assert.Equal(t, -0.006, rec.reports[0].value)
}

func TestZeroLayerDepthForcesLowestBucket(t *testing.T) {
	rec := &recordingReporter{}
	calc := NewCalculator(rec)

	total, err := calc.WindShearDetail(vec(5, 0), zeros(2), zeros(2), zeros(2), 0)
	require.NoError(t, err)
	assert.True(t, total.Selection.NaNPresent)
	assert.Equal(t, []float64{0.002, 0.002}, total.Shear.Data())

	normal, err := calc.WindShearNormalDetail(vec(5, 0), zeros(2), zeros(2), zeros(2),
		field.Scalar(1), field.Scalar(0), 0)
	require.NoError(t, err)
	assert.True(t, normal.Selection.NaNPresent)
	assert.Equal(t, []float64{-0.002, -0.002}, normal.Shear.Data())

	// the NaN override reports even though the bucket is the lowest
	require.Len(t, rec.reports, 2)
	assert.Equal(t, 0.002, rec.reports[0].value)
	assert.Equal(t, -0.002, rec.reports[1].value)

	// only the normal calculation sends the removal notice
	assert.Equal(t, []string{NaNRemovedNotice}, rec.notices)
}

func TestWriterReporterNaNNotice(t *testing.T) {
	var buf bytes.Buffer
	calc := NewCalculator(NewWriterReporter(&buf))

	_, err := calc.WindShearNormal(vec(5, 10), zeros(2), zeros(2), zeros(2),
		field.Scalar(1), field.Scalar(0), 0)
	require.NoError(t, err)

	assert.Equal(t, "Removed NaN!\nNORMAL shear: -0.002\n", buf.String())
}

func TestLowestBucketIsNotReported(t *testing.T) {
	rec := &recordingReporter{}
	calc := NewCalculator(rec)

	out, err := calc.WindShear(vec(1, 2), zeros(2), zeros(2), zeros(2), 1000)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.002, 0.002}, out.Data())
	assert.Empty(t, rec.reports)
}

func TestNormalNaNCheckUsesProjectedGradient(t *testing.T) {
	calc := NewCalculator(nil)

	// the magnitude is finite, the projection is not
	res, err := calc.WindShearNormalDetail(vec(10, 10), zeros(2), zeros(2), zeros(2),
		vec(1, math.NaN()), field.Scalar(0), 1000)
	require.NoError(t, err)
	assert.True(t, res.Selection.NaNPresent)
	assert.Equal(t, LowestBucket, res.Selection.Bucket)
	assert.InDelta(t, 0.01, res.Selection.MaxMagnitude, 1e-12)
}

func TestNormalBucketUsesMagnitudeNotProjection(t *testing.T) {
	calc := NewCalculator(nil)

	// wind entirely along the axis gives a zero normal component but a
	// large total magnitude
	out, err := calc.WindShearNormal(vec(4, 6), zeros(2), zeros(2), zeros(2),
		field.Scalar(1), field.Scalar(0), 1000)
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.006, -0.006}, out.Data())
}

func TestOutputIgnoresElementVariation(t *testing.T) {
	calc := NewCalculator(nil)

	uTop, err := field.New([]int{2, 3}, []float64{0, 1, 2, 3.9, 0.5, 0.1})
	require.NoError(t, err)

	out, err := calc.WindShear(uTop, field.Scalar(0), field.Scalar(0), field.Scalar(0), 1000)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, out.Shape())
	for _, v := range out.Data() {
		assert.Equal(t, 0.004, v)
	}
}

func TestBroadcastShape(t *testing.T) {
	calc := NewCalculator(nil)

	col, err := field.New([]int{3, 1}, []float64{1, 2, 3})
	require.NoError(t, err)

	out, err := calc.WindShearNormal(col, field.Scalar(0), vec(1, 2), field.Scalar(0),
		vec(0.6, 0.8), field.Scalar(0.8), 500)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, out.Shape())

	_, err = calc.WindShear(vec(1, 2, 3), vec(1, 2), field.Scalar(0), field.Scalar(0), 1000)
	assert.True(t, errors.Is(err, field.ErrShapeMismatch))
}

func TestEmptyInput(t *testing.T) {
	calc := NewCalculator(nil)
	_, err := calc.WindShear(vec(), vec(), vec(), vec(), 1000)
	assert.True(t, errors.Is(err, field.ErrEmpty))
}

func TestSelectBucket(t *testing.T) {
	tests := []struct {
		name     string
		max      float64
		expected float64
	}{
		{name: "calm", max: 0, expected: 0.002},
		{name: "below lowest", max: 0.001, expected: 0.002},
		{name: "tie between low and mid", max: 0.003, expected: 0.002},
		{name: "nearest mid", max: 0.0041, expected: 0.004},
		{name: "tie between mid and high", max: 0.005, expected: 0.004},
		{name: "nearest high", max: 0.0051, expected: 0.006},
		{name: "strong", max: 0.5, expected: 0.006},
		{name: "infinite magnitude", max: math.Inf(1), expected: 0.002},
		{name: "nan magnitude", max: math.NaN(), expected: 0.002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := vec(0, tt.max)
			sel, err := SelectBucket(m, field.Scalar(0))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sel.Bucket)
			assert.False(t, sel.NaNPresent)
		})
	}
}

func TestSelectBucketNaNOverride(t *testing.T) {
	sel, err := SelectBucket(vec(0.01), vec(1, math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, LowestBucket, sel.Bucket)
	assert.True(t, sel.NaNPresent)
}

func TestWriterReporterFormat(t *testing.T) {
	var buf bytes.Buffer
	calc := NewCalculator(NewWriterReporter(&buf))

	_, err := calc.WindShear(vec(5, 10), zeros(2), zeros(2), zeros(2), 1000)
	require.NoError(t, err)
	_, err = calc.WindShearNormal(vec(5, 10), zeros(2), zeros(2), zeros(2),
		field.Scalar(1), field.Scalar(0), 1000)
	require.NoError(t, err)

	assert.Equal(t, "Shear : 0.006\nNORMAL shear: -0.006\n", buf.String())
}

func TestZapReporter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calc := NewCalculator(NewZapReporter(zap.New(core).Sugar()))

	_, err := calc.WindShearNormal(vec(5, 10), zeros(2), zeros(2), zeros(2),
		field.Scalar(1), field.Scalar(0), 1000)
	require.NoError(t, err)

	entries := logs.FilterMessage("shear bucket selected").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "NORMAL shear", ctx["calculator"])
	assert.Equal(t, -0.006, ctx["min_shear"])

	_, err = calc.WindShearNormal(vec(5), zeros(1), zeros(1), zeros(1),
		field.Scalar(1), field.Scalar(0), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage(NaNRemovedNotice).Len())
}

func TestMultiReporter(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	calc := NewCalculator(MultiReporter{a, b, NopReporter{}})
	calc.WindShear(vec(4), vec(0), vec(0), vec(0), 1000)
	assert.Len(t, a.reports, 1)
	assert.Len(t, b.reports, 1)

	calc.WindShearNormal(vec(4), vec(0), vec(0), vec(0), field.Scalar(math.NaN()), field.Scalar(0), 1000)
	assert.Equal(t, []string{NaNRemovedNotice}, a.notices)
	assert.Equal(t, []string{NaNRemovedNotice}, b.notices)
}

func TestEnhancementFactor(t *testing.T) {
	tests := []struct {
		name       string
		depth      field.Field
		resolution field.Field
		exponent   field.Field
	}{
		{name: "documented example", depth: vec(50), resolution: field.Scalar(200), exponent: field.Scalar(2)},
		{name: "no enhancement", depth: vec(100, 300), resolution: field.Scalar(500), exponent: field.Scalar(0)},
		{name: "depth near zero", depth: vec(1e-300), resolution: field.Scalar(200), exponent: field.Scalar(3)},
		{name: "zero depth", depth: vec(0), resolution: field.Scalar(200), exponent: field.Scalar(1)},
		{name: "mismatched shapes", depth: vec(1, 2), resolution: vec(1, 2, 3), exponent: field.Scalar(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 1.0, EnhancementFactor(tt.depth, tt.resolution, tt.exponent))
		})
	}
}

func TestEnhancementFactorFormula(t *testing.T) {
	f, err := EnhancementFactorFormula(vec(50), field.Scalar(200), field.Scalar(2))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{8.5}, f.Data(), 1e-12)

	f, err = EnhancementFactorFormula(vec(100, 400), field.Scalar(200), field.Scalar(0))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, f.Data())
}

func TestCalculatorConcurrentUse(t *testing.T) {
	rec := &recordingReporter{}
	calc := NewCalculator(rec)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := calc.WindShear(vec(5, 10), zeros(2), zeros(2), zeros(2), 1000)
			assert.NoError(t, err)
			assert.Equal(t, []float64{0.006, 0.006}, out.Data())
		}()
	}
	wg.Wait()
	assert.Len(t, rec.reports, 16)
}
