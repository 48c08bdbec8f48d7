package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rbeaumont/shiftclock/internal/track"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused work session",
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
		target := snap.ResumeTarget()
		if snap.Status != track.StatusPaused || target == "" {
			return &track.InvalidTransitionError{Op: "resume", Reason: "no paused segment"}
		}

		s, err := st.ApplyResume(cmd.Context(), subject, target)
		if err != nil {
			return err
		}

		announceActivity()
		cmd.Printf("Session resumed. Accumulated so far: %s.\n", formatSeconds(s.AccumulatedSeconds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
