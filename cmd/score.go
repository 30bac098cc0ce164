package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/jobs"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the postings of a jobs file against the profile",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().String("jobs", "jobs.yaml", "file with a `jobs` list of postings (yaml, json or toml)")
	addReviewFlags(scoreCmd)
}

func score(cmd *cobra.Command) {
	s := newSession(context.Background())

	path, _ := cmd.Flags().GetString("jobs")
	postings, err := jobs.LoadPostings(path)
	if err != nil {
		s.logger.Fatal("loading postings", zap.Error(err))
	}

	s.logger.Info("postings loaded", zap.String("path", path), zap.Int("count", postings.Len()))

	if postings.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	review(cmd, s, postings, s.config.Criteria)
}
