package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"signs-study-service/internal/app"
	"signs-study-service/internal/config"
)

// NewStatsCmd prints a learner's sign mastery and chapter progress.
func NewStatsCmd(configPath *string) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			persistence, backends, err := buildPersistence(ctx, cfg)
			if err != nil {
				return err
			}
			defer backends.Close()

			overview := newStudyService(persistence, cfg).Overview(ctx, userID)
			chapters := app.NewChapterTracker(persistence).Overview(ctx, userID)
			printStats(cmd.OutOrStdout(), overview, chapters)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "learner id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printStats(w io.Writer, o app.ProgressOverview, chapters []app.ChapterCard) {
	g := o.Global
	fmt.Fprintf(w, "Signs for %s: %d%% mastered (%d of %d)\n", o.UserID, o.CompletionPercent, g.Mastered, g.Total())
	fmt.Fprintf(w, "  new %d  learning %d  reviewing %d  mastered %d\n", g.New, g.Learning, g.Reviewing, g.Mastered)
	for _, c := range o.Categories {
		fmt.Fprintf(w, "  %-24s %3d%%  %d/%d\n", c.Category.Title, c.Percent, c.Mastered, c.Total)
	}

	fmt.Fprintln(w, "Chapters:")
	for _, c := range chapters {
		status := "not started"
		switch {
		case c.IsCompleted:
			status = "completed"
		case c.IsStarted:
			status = "in progress"
		}
		line := fmt.Sprintf("  %-24s %d/%d lessons, ~%d min, %s", c.Topic.Title, c.CompletedLessons, c.TotalLessons, c.EstimatedMinutes, status)
		if c.LastAccessedText != "" {
			line += ", last opened " + c.LastAccessedText
		}
		fmt.Fprintln(w, line)
	}
}
