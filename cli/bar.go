package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/safedep/dry/log"
	"github.com/safedep/termbar/tui"
	"github.com/spf13/cobra"
)

// barFlags are the bar flags shared by every drawing command.
type barFlags struct {
	prefix     string
	suffix     string
	total      string
	barSize    string
	noPercents bool
	noEstimate bool
	dryRun     bool
}

func (f *barFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "text drawn before the bar")
	cmd.Flags().StringVar(&f.suffix, "suffix", "", "text drawn after the bar")
	cmd.Flags().StringVar(&f.total, "total", "", "value that represents 100% (default from run.total)")
	cmd.Flags().StringVar(&f.barSize, "bar-size", "", "fixed bar width in cells, overriding the terminal layout")
	cmd.Flags().BoolVar(&f.noPercents, "no-percents", false, "hide the percentage")
	cmd.Flags().BoolVar(&f.noEstimate, "no-estimate", false, "hide the estimated time remaining")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print every rendered line instead of redrawing")
}

// barDriver draws a bar either in place or, for dry runs, one line per draw.
type barDriver struct {
	bar    *tui.ProgressBar
	out    io.Writer
	dryRun bool
	start  time.Time
	// err holds the first dry-run write failure.
	err error
}

// newBarDriver builds a bar for cmd from the app config and the flags.
// Prefix and suffix are applied before the bar size, so an explicit
// --bar-size wins over the terminal layout.
func newBarDriver(cmd *cobra.Command, app *App, flags *barFlags) *barDriver {
	out := cmd.OutOrStdout()

	opts := app.Config.BarOptions(out)
	if flags.noPercents {
		opts = append(opts, tui.WithPercents(false))
	}
	if flags.noEstimate {
		opts = append(opts, tui.WithEstimate(false))
	}

	bar := tui.NewProgressBar(opts...)
	bar.SetPrefix(flags.prefix)
	bar.SetSuffix(flags.suffix)

	// The flag is applied on top, so malformed input keeps the configured total.
	bar.SetTotal(strconv.FormatFloat(app.Config.Run.Total, 'f', -1, 64))
	if flags.total != "" {
		bar.SetTotal(flags.total)
	}

	if flags.barSize != "" {
		bar.SetBarSize(flags.barSize)
	}

	if globalFlags.Verbose {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "run: %s\n%s\n", app.RunID, bar)
	}
	if !tui.IsWriterTerminal(out) {
		log.Debugf("run %s: output is not a terminal, using width %d", app.RunID, app.Config.Terminal.DefaultWidth)
	}
	log.Debugf("run %s started", app.RunID)

	return &barDriver{
		bar:    bar,
		out:    out,
		dryRun: flags.dryRun,
		start:  time.Now(),
	}
}

func (d *barDriver) update(done float64) {
	d.bar.UpdateProgress(done)

	if d.dryRun {
		if d.err != nil {
			return
		}
		if _, err := fmt.Fprintln(d.out, strings.TrimPrefix(d.bar.Render(), "\r")); err != nil {
			d.err = err
		}
		return
	}
	d.bar.Draw()
}

// finish ends the redraw sequence and reports output failures.
func (d *barDriver) finish(cmd *cobra.Command, app *App) error {
	if !d.dryRun {
		d.bar.FlushLine()
	}
	log.Debugf("run %s finished in %s", app.RunID, tui.FormatDuration(time.Since(d.start)))

	if err := d.err; err != nil {
		return ErrOutput("failed to print progress bar", err)
	}
	if err := d.bar.Err(); err != nil {
		return ErrOutput("failed to draw progress bar", err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "done: %g/%g in %s\n",
		d.bar.Progress(), d.bar.Total(), tui.FormatDuration(time.Since(d.start)))
	return nil
}

// abort leaves the partially drawn bar on its own line.
func (d *barDriver) abort() {
	if !d.dryRun {
		d.bar.FlushLine()
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
