package shear

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Reporter receives the diagnostic emitted when a calculation settles on a
// bucket other than LowestBucket, or had to override a NaN.
type Reporter interface {
	Report(label string, value float64)
}

// Notifier is implemented by reporters that also accept unlabelled notices,
// such as the one sent when a NaN gradient forces the lowest bucket
type Notifier interface {
	Notify(msg string)
}

// WriterReporter writes each diagnostic as a single "<label><value>" line
type WriterReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterReporter returns a reporter that writes to w
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

// Report implements Reporter
func (r *WriterReporter) Report(label string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, label+strconv.FormatFloat(value, 'g', -1, 64))
}

// Notify implements Notifier
func (r *WriterReporter) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, msg)
}

// ZapReporter sends diagnostics to a zap logger at debug level
type ZapReporter struct {
	logger *zap.SugaredLogger
}

// NewZapReporter returns a reporter that logs through logger
func NewZapReporter(logger *zap.SugaredLogger) *ZapReporter {
	return &ZapReporter{logger: logger}
}

// Report implements Reporter
func (r *ZapReporter) Report(label string, value float64) {
	r.logger.Debugw("shear bucket selected",
		"calculator", strings.TrimRight(label, " :"),
		"min_shear", value)
}

// Notify implements Notifier
func (r *ZapReporter) Notify(msg string) {
	r.logger.Warn(msg)
}

// MultiReporter fans a diagnostic out to several reporters
type MultiReporter []Reporter

// Report implements Reporter
func (m MultiReporter) Report(label string, value float64) {
	for _, r := range m {
		r.Report(label, value)
	}
}

// Notify implements Notifier, forwarding to every reporter that accepts notices
func (m MultiReporter) Notify(msg string) {
	for _, r := range m {
		if n, ok := r.(Notifier); ok {
			n.Notify(msg)
		}
	}
}

// NopReporter discards diagnostics
type NopReporter struct{}

// Report implements Reporter
func (NopReporter) Report(string, float64) {}
