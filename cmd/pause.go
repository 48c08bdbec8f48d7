package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rbeaumont/shiftclock/internal/track"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the current work session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		subject := subjectID()
		snap, err := st.Snapshot(cmd.Context(), subject)
		if err != nil {
			return err
		}
		if snap.Status != track.StatusActive {
			return &track.InvalidTransitionError{Op: "pause", Reason: "wrong status"}
		}

		s, err := st.ApplyPause(cmd.Context(), subject, snap.OpenSegmentID)
		if err != nil {
			return err
		}

		announceActivity()
		cmd.Printf("Session paused. Accumulated: %s.\n", formatSeconds(s.AccumulatedSeconds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}
