package tui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	carriageReturn = "\r"
	newline        = "\n"

	// DefaultTotal is the value that represents 100% until SetTotal says otherwise.
	DefaultTotal = 100.0

	DefaultBaseMarker    = "."
	DefaultDoneMarker    = "#"
	DefaultCurrentMarker = ">"
)

// ProgressBar renders a single-line progress bar that redraws in place.
//
// A ProgressBar is not safe for concurrent use. The intended pattern is
// one caller updating progress and calling Draw in a loop, followed by
// FlushLine once the work is done.
type ProgressBar struct {
	prefix string
	suffix string

	progress float64
	total    float64

	doneMarker       string
	inProgressMarker string
	currentMarker    string

	showPercents bool
	showEstimate bool
	liveWidth    bool

	terminalWidth int
	// barLength is the combined length of prefix and suffix.
	barLength int
	barSize   int
	// sizeOverride is set by SetBarSize and cleared by SetPrefix/SetSuffix.
	sizeOverride bool

	startTime time.Time

	writer      io.Writer
	out         *lineWriter
	widthSource func() int
	now         func() time.Time
	diagnostics Diagnostics
	errReported bool
}

// BarOption configures a ProgressBar.
type BarOption func(*ProgressBar)

// WithBaseMarker sets the glyph for cells not yet done.
func WithBaseMarker(marker string) BarOption {
	return func(b *ProgressBar) {
		b.inProgressMarker = marker
	}
}

// WithDoneMarker sets the glyph for done cells.
func WithDoneMarker(marker string) BarOption {
	return func(b *ProgressBar) {
		b.doneMarker = marker
	}
}

// WithCurrentMarker sets the glyph drawn at the fill boundary.
func WithCurrentMarker(marker string) BarOption {
	return func(b *ProgressBar) {
		b.currentMarker = marker
	}
}

// WithPercents toggles the "|PPP.PP%" annotation.
func WithPercents(show bool) BarOption {
	return func(b *ProgressBar) {
		b.showPercents = show
	}
}

// WithEstimate toggles the "|ETA: HH:MM:SS" annotation.
func WithEstimate(show bool) BarOption {
	return func(b *ProgressBar) {
		b.showEstimate = show
	}
}

// WithWriter sets the output stream. Defaults to os.Stdout.
func WithWriter(w io.Writer) BarOption {
	return func(b *ProgressBar) {
		b.writer = w
	}
}

// WithWidthSource sets the terminal column count source. It is queried
// once at construction, and on every Draw when live width is enabled.
func WithWidthSource(fn func() int) BarOption {
	return func(b *ProgressBar) {
		b.widthSource = fn
	}
}

// WithLiveWidth re-queries the width source before every Draw so the
// layout follows terminal resizes.
func WithLiveWidth(live bool) BarOption {
	return func(b *ProgressBar) {
		b.liveWidth = live
	}
}

// WithClock sets the wall clock used for the estimate.
func WithClock(now func() time.Time) BarOption {
	return func(b *ProgressBar) {
		b.now = now
	}
}

// WithDiagnostics sets where non-fatal warnings are reported.
func WithDiagnostics(d Diagnostics) BarOption {
	return func(b *ProgressBar) {
		b.diagnostics = d
	}
}

// NewProgressBar creates a progress bar. The terminal width and the
// estimate origin are captured here.
func NewProgressBar(opts ...BarOption) *ProgressBar {
	b := &ProgressBar{
		total:            DefaultTotal,
		doneMarker:       DefaultDoneMarker,
		inProgressMarker: DefaultBaseMarker,
		currentMarker:    DefaultCurrentMarker,
		showPercents:     true,
		showEstimate:     true,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.writer == nil {
		b.writer = os.Stdout
	}
	if b.widthSource == nil {
		b.widthSource = TerminalWidthFunc(b.writer, DefaultTerminalWidth)
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.diagnostics == nil {
		b.diagnostics = LogDiagnostics
	}

	b.out = newLineWriter(b.writer)
	b.terminalWidth = b.widthSource()
	b.startTime = b.now()
	b.barSize = b.formulaWidth(b.annotations())

	return b
}

// SetPrefix replaces the text drawn before the bar and recomputes the
// bar width from the layout formula, discarding any SetBarSize override.
func (b *ProgressBar) SetPrefix(prefix string) {
	b.prefix = prefix
	b.updateBarLength()
}

// SetSuffix replaces the text drawn after the bar and recomputes the
// bar width from the layout formula, discarding any SetBarSize override.
func (b *ProgressBar) SetSuffix(suffix string) {
	b.suffix = suffix
	b.updateBarLength()
}

func (b *ProgressBar) updateBarLength() {
	b.barLength = utf8.RuneCountInString(b.prefix) + utf8.RuneCountInString(b.suffix)
	b.sizeOverride = false
	b.barSize = b.formulaWidth(b.annotations())
}

// SetBarSize overrides the bar body width with size parsed as an
// integer. The override holds until the next SetPrefix or SetSuffix.
// Input that does not parse is reported to diagnostics and ignored.
func (b *ProgressBar) SetBarSize(size string) {
	n, err := strconv.Atoi(strings.TrimSpace(size))
	if err != nil {
		b.diagnostics.Warnf("unable to set bar size %q: %v", size, err)
		return
	}

	b.barSize = n
	b.sizeOverride = true
}

// SetTotal replaces the value that represents 100% with total parsed as
// a float. Zero is ignored. Input that does not parse, or is not
// finite, is reported to diagnostics and ignored.
func (b *ProgressBar) SetTotal(total string) {
	v, err := strconv.ParseFloat(strings.TrimSpace(total), 64)
	if err != nil {
		b.diagnostics.Warnf("unable to set total %q: %v", total, err)
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		b.diagnostics.Warnf("unable to set total %q: not a finite number", total)
		return
	}
	if v == 0 {
		return
	}

	b.total = v
}

// UpdateProgress replaces the current progress. The value is not
// validated; out of range values show up in the drawn bar.
func (b *ProgressBar) UpdateProgress(done float64) {
	b.progress = done
}

// Progress returns the current progress value.
func (b *ProgressBar) Progress() float64 {
	return b.progress
}

// Total returns the value that represents 100%.
func (b *ProgressBar) Total() float64 {
	return b.total
}

// Render returns the line Draw would write for the current state.
func (b *ProgressBar) Render() string {
	if b.liveWidth {
		b.terminalWidth = b.widthSource()
	}

	annotations := b.annotations()
	if !b.sizeOverride {
		b.barSize = b.formulaWidth(annotations)
	}

	line := barLine{
		prefix:           b.prefix,
		suffix:           b.suffix,
		width:            b.barSize,
		filled:           filledCount(b.barSize, b.progress, b.total),
		doneMarker:       b.doneMarker,
		currentMarker:    b.currentMarker,
		inProgressMarker: b.inProgressMarker,
	}
	if b.showPercents {
		line.percentText = annotations[0]
	}
	if b.showEstimate {
		line.estimateText = annotations[1]
	}

	return line.String()
}

// Draw writes the current bar to the output without a trailing newline
// and flushes it, so repeated calls overwrite the same terminal line.
func (b *ProgressBar) Draw() {
	b.write(b.Render())
}

// FlushLine ends the redraw sequence by moving to a fresh line.
func (b *ProgressBar) FlushLine() {
	b.write(newline)
}

// Err returns the first error encountered while writing, or nil.
func (b *ProgressBar) Err() error {
	return b.out.Err()
}

func (b *ProgressBar) write(s string) {
	b.out.writeFlush(s)

	if err := b.out.Err(); err != nil && !b.errReported {
		b.errReported = true
		b.diagnostics.Warnf("unable to write progress bar: %v", err)
	}
}

// annotations returns the percent and estimate texts for the current
// state. A disabled annotation is returned as an empty string.
func (b *ProgressBar) annotations() []string {
	texts := make([]string, 2)
	if b.showPercents {
		texts[0] = formatPercent(b.progress, b.total)
	}
	if b.showEstimate {
		texts[1] = formatEstimate(b.now().Sub(b.startTime), b.progress, b.total)
	}
	return texts
}

func (b *ProgressBar) formulaWidth(annotations []string) int {
	return contentWidth(b.terminalWidth, b.barLength, annotations...)
}

// String describes the bar state for debugging.
func (b *ProgressBar) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "prefix: %s\n", b.prefix)
	fmt.Fprintf(&sb, "suffix: %s\n", b.suffix)
	fmt.Fprintf(&sb, "bar length: %d\n", b.barLength)
	fmt.Fprintf(&sb, "terminal width: %d\n", b.terminalWidth)
	fmt.Fprintf(&sb, "bar size: %d\n", b.barSize)
	fmt.Fprintf(&sb, "marker: %s\n", b.doneMarker)
	fmt.Fprintf(&sb, "total: %g\n", b.total)
	fmt.Fprintf(&sb, "progress: %g", b.progress)
	return sb.String()
}
