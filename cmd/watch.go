package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rbeaumont/shiftclock/internal/bus"
	"github.com/rbeaumont/shiftclock/internal/track"
	"github.com/rbeaumont/shiftclock/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live dashboard (running clock, totals, idle countdown)",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		activity, err := bus.New(resolveDataDir(), nil)
		if err != nil {
			return err
		}
		defer activity.Close()

		opts := tui.Options{
			Subject:       subjectID(),
			IdleEnabled:   cfg.IdleAutoPause() && !exemptPolicy{}.IsExempt(subjectID()),
			IdleThreshold: time.Duration(cfg.IdleThresholdMinutes) * time.Minute,
			Scheduler:     track.WallClock(),
		}
		return tui.Run(st, activity, opts)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
