package config

import (
	"github.com/safedep/termbar/tui"
	"github.com/spf13/viper"
)

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Bar defaults
	v.SetDefault("bar.base_marker", tui.DefaultBaseMarker)
	v.SetDefault("bar.done_marker", tui.DefaultDoneMarker)
	v.SetDefault("bar.current_marker", tui.DefaultCurrentMarker)
	v.SetDefault("bar.show_percents", true)
	v.SetDefault("bar.show_estimate", true)
	v.SetDefault("bar.live_width", false)

	// Terminal defaults
	v.SetDefault("terminal.default_width", tui.DefaultTerminalWidth)

	// Run defaults
	v.SetDefault("run.total", tui.DefaultTotal)
	v.SetDefault("run.step", 1.0)
	v.SetDefault("run.interval", "50ms")
}
