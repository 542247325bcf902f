package config

import (
	"fmt"
	"math"
)

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	// An empty done marker would draw progress as nothing at all
	if cfg.Bar.DoneMarker == "" {
		return fmt.Errorf("bar.done_marker must not be empty")
	}

	if cfg.Terminal.DefaultWidth <= 0 {
		return fmt.Errorf("terminal.default_width must be positive")
	}

	if err := validateRun(cfg.Run); err != nil {
		return err
	}

	return nil
}

func validateRun(run RunConfig) error {
	if run.Total == 0 || math.IsNaN(run.Total) || math.IsInf(run.Total, 0) {
		return fmt.Errorf("run.total must be a finite, non-zero number")
	}
	if !(run.Step > 0) || math.IsInf(run.Step, 0) {
		return fmt.Errorf("run.step must be positive")
	}
	if run.Interval < 0 {
		return fmt.Errorf("run.interval must be non-negative")
	}
	return nil
}
