// Package tui provides the presentation layer for terminal output.
//
// The main type is ProgressBar, a single-line bar that redraws in place
// using a leading carriage return:
//
//	bar := tui.NewProgressBar(tui.WithEstimate(false))
//	bar.SetPrefix("copying")
//	for i := 0; i <= 100; i++ {
//		bar.UpdateProgress(float64(i))
//		bar.Draw()
//	}
//	bar.FlushLine()
//
// Malformed setter input and write failures are reported through a
// Diagnostics sink and never interrupt drawing.
package tui
