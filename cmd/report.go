package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rbeaumont/shiftclock/internal/track"
)

var reportFormat string

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	reportLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("33")).
				Bold(true)

	reportDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show today / this week / all-time totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		subject := subjectID()
		ctx := cmd.Context()
		snap, err := st.Snapshot(ctx, subject)
		if err != nil {
			return err
		}
		segments, err := st.Segments(ctx, subject)
		if err != nil {
			return err
		}

		// One history fetch, three windows: the clamping is identical, only
		// the bounds differ.
		now := time.Now()
		today := track.Aggregate(segments, snap, track.Today(now), now)
		week := track.Aggregate(segments, snap, track.ThisWeek(now), now)
		all := track.Aggregate(segments, snap, track.AllTime(now), now)

		format := reportFormat
		if format == "" {
			format = GetConfig().DefaultFormat
		}

		if format == "json" {
			out := struct {
				Subject      string  `json:"subject"`
				Status       string  `json:"status"`
				TodaySeconds int64   `json:"today_seconds"`
				WeekSeconds  int64   `json:"week_seconds"`
				TotalSeconds int64   `json:"total_seconds"`
				TodayHours   float64 `json:"today_hours"`
				WeekHours    float64 `json:"week_hours"`
				TotalHours   float64 `json:"total_hours"`
				SkippedRows  int     `json:"skipped_rows"`
			}{
				Subject:      subject,
				Status:       string(snap.Status),
				TodaySeconds: today.Seconds,
				WeekSeconds:  week.Seconds,
				TotalSeconds: all.Seconds,
				TodayHours:   today.Hours(),
				WeekHours:    week.Hours(),
				TotalHours:   all.Hours(),
				SkippedRows:  all.Skipped,
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		}

		cmd.Println(reportTitleStyle.Render(fmt.Sprintf(" %s — %s ", subject, snap.Status)))
		cmd.Printf("%s %s  (%.2fh)\n", reportLabelStyle.Render("Today:    "), formatSeconds(today.Seconds), today.Hours())
		cmd.Printf("%s %s  (%.2fh)\n", reportLabelStyle.Render("This week:"), formatSeconds(week.Seconds), week.Hours())
		cmd.Printf("%s %s  (%.2fh)\n", reportLabelStyle.Render("All time: "), formatSeconds(all.Seconds), all.Hours())
		if all.Skipped > 0 {
			cmd.Println(reportDimStyle.Render(fmt.Sprintf("(%d malformed segment rows skipped)", all.Skipped)))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "Output format: text or json (overrides config)")
	rootCmd.AddCommand(reportCmd)
}
