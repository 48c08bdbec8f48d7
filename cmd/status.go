package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rbeaumont/shiftclock/internal/track"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current work session status and live duration",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		snap, err := st.Snapshot(cmd.Context(), subjectID())
		if err != nil {
			return err
		}

		if snap.Status == track.StatusInactive && snap.AccumulatedSeconds == 0 {
			cmd.Println("no active session")
			return nil
		}

		now := time.Now()
		clock := track.NewLiveClock(nil)
		clock.Update(snap, now, now)

		cmd.Printf("Status: %s\n", snap.Status)
		cmd.Printf("Duration: %s\n", formatSeconds(clock.Seconds(now)))
		if snap.Status == track.StatusActive && snap.SegmentStartedAt != nil {
			cmd.Printf("Current segment since: %s\n", snap.SegmentStartedAt.Format(time.Kitchen))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
