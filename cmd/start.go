package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin a new work session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		s, err := st.ApplyStart(cmd.Context(), subjectID())
		if err != nil {
			return err
		}

		announceActivity()
		cmd.Printf("Session started at %s.\n", s.SegmentStartedAt.Format(time.Kitchen))
		if acc := s.AccumulatedSeconds; acc > 0 {
			cmd.Printf("Previously accumulated: %s.\n", formatSeconds(acc))
		}
		return nil
	},
}

// formatSeconds renders whole seconds as h:mm:ss.
func formatSeconds(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func init() {
	rootCmd.AddCommand(startCmd)
}
