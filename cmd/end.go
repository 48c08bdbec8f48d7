package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rbeaumont/shiftclock/internal/track"
)

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End the current work session",
	Long:  "End the current work session. A paused session must be resumed before it can be ended.",
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
		if snap.Status == track.StatusPaused {
			return &track.InvalidTransitionError{Op: "end", Reason: "session is paused, resume it first"}
		}
		if snap.Status != track.StatusActive {
			return &track.InvalidTransitionError{Op: "end", Reason: "no active segment"}
		}

		s, err := st.ApplyEnd(cmd.Context(), subject, snap.OpenSegmentID)
		if err != nil {
			return err
		}

		announceActivity()
		cmd.Printf("Session ended. Total accumulated: %s.\n", formatSeconds(s.AccumulatedSeconds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(endCmd)
}
