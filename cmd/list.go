package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/answers"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your mock interviews",
	Run: func(cmd *cobra.Command, _ []string) {
		list(cmd)
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <interview-id>",
	Short: "Show saved answers and the overall rating of an interview",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		feedback(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func list(cmd *cobra.Command) {
	ctx := context.Background()
	config, log := setup()

	d, err := buildDeps(ctx, config, log, false)
	if err != nil {
		log.Fatal("building dependencies", zap.Error(err))
	}
	defer d.Close()

	interviews, err := d.store.ListInterviews(ctx, config.User)
	if err != nil {
		log.Fatal("listing interviews", zap.Error(err))
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOSITION\tEXPERIENCE\tQUESTIONS\tCREATED")
	for _, in := range interviews {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", in.ID, in.Position, in.Experience, len(in.Questions), in.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func feedback(cmd *cobra.Command, interviewID string) {
	ctx := context.Background()
	config, log := setup()

	d, err := buildDeps(ctx, config, log, false)
	if err != nil {
		log.Fatal("building dependencies", zap.Error(err))
	}
	defer d.Close()

	report, err := answers.Feedback(ctx, d.store, config.User, interviewID)
	if err != nil {
		log.Fatal("loading feedback", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Overall rating: %s/10\n\n", report.Overall)
	for _, a := range report.Answers {
		fmt.Fprintf(out, "Q: %s\nYour answer: %s\nExpected: %s\nRating: %g/10\nFeedback: %s\n\n",
			a.Question, a.UserAns, a.CorrectAns, a.Rating, a.Feedback)
	}
}
