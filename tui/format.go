package tui

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	percentPlaceholder  = "|---.--%"
	estimatePlaceholder = "|ETA: --:--:--"

	// maxEstimateSeconds keeps the estimate field at a constant width.
	maxEstimateSeconds = 99*3600 + 59*60 + 59

	// brackets plus the space after the prefix
	decorationWidth = 3
)

// formatPercent renders the share of total that progress represents,
// rounded to two decimals, as "|PPP.PP%".
func formatPercent(progress, total float64) string {
	if total == 0 {
		return percentPlaceholder
	}

	percent := math.Round(progress*100/total*100) / 100
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return percentPlaceholder
	}

	return fmt.Sprintf("|%06.2f%%", percent)
}

// formatEstimate projects the remaining time from the average rate so
// far and renders it as "|ETA: HH:MM:SS".
func formatEstimate(elapsed time.Duration, progress, total float64) string {
	if progress <= 0 || math.IsNaN(progress) || math.IsInf(progress, 0) {
		return estimatePlaceholder
	}

	spent := elapsed.Seconds()
	remaining := total*spent/progress - spent
	if math.IsNaN(remaining) {
		return estimatePlaceholder
	}

	seconds := int64(maxEstimateSeconds)
	if remaining < maxEstimateSeconds {
		seconds = int64(math.Max(remaining, 0))
	}

	return fmt.Sprintf("|ETA: %02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// contentWidth is the number of cells left for the bar body once the
// prefix, suffix, brackets and annotations are accounted for. The
// result may be zero or negative on narrow terminals.
func contentWidth(terminalWidth, barLength int, annotations ...string) int {
	width := terminalWidth - barLength - decorationWidth
	for _, a := range annotations {
		width -= utf8.RuneCountInString(a)
	}
	return width
}

// filledCount is the number of done cells for a body of the given
// width, clamped to [0, width].
func filledCount(width int, progress, total float64) int {
	if width <= 0 || total == 0 {
		return 0
	}

	n := math.Floor(float64(width) * progress / total)
	switch {
	case math.IsNaN(n) || n <= 0:
		return 0
	case n >= float64(width):
		return width
	}
	return int(n)
}

// barLine holds everything needed to assemble one redraw line.
type barLine struct {
	prefix, suffix string

	width  int
	filled int

	doneMarker       string
	currentMarker    string
	inProgressMarker string

	percentText  string
	estimateText string
}

// String assembles the line, starting with a carriage return so it
// overwrites the previous draw.
func (l barLine) String() string {
	var sb strings.Builder

	sb.WriteString(carriageReturn)
	if l.prefix != "" {
		sb.WriteString(l.prefix)
		sb.WriteString(" ")
	}

	current := l.currentMarker
	if l.filled >= l.width {
		current = ""
	}

	sb.WriteString("[")
	sb.WriteString(repeat(l.doneMarker, l.filled))
	sb.WriteString(current)
	sb.WriteString(repeat(l.inProgressMarker, l.width-l.filled-1))
	sb.WriteString("]")

	sb.WriteString(l.percentText)
	sb.WriteString(l.estimateText)

	if l.suffix != "" {
		sb.WriteString("|")
		sb.WriteString(l.suffix)
	}

	return sb.String()
}

// repeat is strings.Repeat that treats a negative count as zero.
func repeat(s string, count int) string {
	if count <= 0 {
		return ""
	}
	return strings.Repeat(s, count)
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, mins)
}
