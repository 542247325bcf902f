package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var (
		flags    barFlags
		step     float64
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Draw a progress bar for a synthetic task",
		Long: `Draw a progress bar for a synthetic task.

Progress advances from 0 to the total by --step every --interval. The
bar redraws in place until the total is reached or the command is
interrupted.`,
		Example: `  termbar run --total 500 --step 10 --interval 100ms --prefix build
  termbar run --bar-size 20 --no-estimate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("step") {
				step = app.Config.Run.Step
			}
			if !cmd.Flags().Changed("interval") {
				interval = app.Config.Run.Interval
			}
			if !(step > 0) {
				return NewCLIError(ExitInput, "--step must be positive")
			}
			if interval < 0 {
				return NewCLIError(ExitInput, "--interval must be non-negative")
			}

			driver := newBarDriver(cmd, app, &flags)
			if err := runSynthetic(cmd.Context(), driver, step, interval); err != nil {
				driver.abort()
				return err
			}

			return driver.finish(cmd, app)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&step, "step", 1, "progress added per tick (default from run.step)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between ticks (default from run.interval)")

	return cmd
}

// runSynthetic advances the bar from zero to its total, drawing once per step.
func runSynthetic(ctx context.Context, d *barDriver, step float64, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	total := d.bar.Total()
	for done := 0.0; ; done += step {
		if done > total {
			done = total
		}
		d.update(done)

		if done >= total {
			return nil
		}
		if err := sleepContext(ctx, interval); err != nil {
			return err
		}
	}
}
