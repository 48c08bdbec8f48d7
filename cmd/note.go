package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbeaumont/shiftclock/internal/track"
)

var noteYes bool

var noteCmd = &cobra.Command{
	Use:   "note <message>",
	Short: "Add a work note (requires an active session)",
	Long: "Add a work note to your record. Notes are only accepted while a session\n" +
		"is actively running; if yours is paused or not started you will be offered\n" +
		"the minimum transition to get there.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		var confirm track.Confirmer = terminalConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
		if noteYes {
			confirm = autoConfirmer{}
		}
		guard := &track.Guard{
			Store:    st,
			Confirm:  confirm,
			Policy:   exemptPolicy{},
			Activity: announceActivity,
		}

		subject := subjectID()
		if _, err := guard.EnsureActive(cmd.Context(), subject, nil); err != nil {
			if errors.Is(err, track.ErrAborted) {
				return fmt.Errorf("note not added: %w", err)
			}
			return err
		}

		if err := st.AppendNote(cmd.Context(), subject, args[0]); err != nil {
			return err
		}

		cmd.Println("Note added.")
		return nil
	},
}

func init() {
	noteCmd.Flags().BoolVarP(&noteYes, "yes", "y", false, "Start or resume the session without prompting")
	rootCmd.AddCommand(noteCmd)
}
