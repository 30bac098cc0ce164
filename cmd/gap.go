package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai/gemini"
	"github.com/worxstance/worxstance/internal/logger"
)

// gapCollection keeps generated gap reports in the document store.
const gapCollection = "gap_reports"

var gapCmd = &cobra.Command{
	Use:   "gap ID",
	Short: "Analyze the skill gap between the profile and a posting and suggest a learning roadmap",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		gap(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(gapCmd)

	gapCmd.Flags().String("jobs", "", "read the posting from this jobs file instead of tracked jobs")
	gapCmd.Flags().String("role", "", "target role to analyze for (default is the posting title)")
	gapCmd.Flags().Bool("no-save", false, "do not keep the report in the store")
}

func gap(cmd *cobra.Command, id string) {
	s := newSession(context.Background())
	candidate := s.requireProfile("gap analysis")

	jobsFile, _ := cmd.Flags().GetString("jobs")
	posting := s.posting(jobsFile, id)

	generator, err := s.newGenerator()
	if err != nil {
		s.logger.Fatal("creating the ai client", zap.Error(err))
	}

	role, _ := cmd.Flags().GetString("role")
	report, err := gemini.NewGapAnalyzer(generator, s.logger).Analyze(s.ctx, posting, candidate, role)
	if err != nil {
		s.logger.Fatal("analyzing the gap", zap.Error(err))
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
		if err := s.store.Set(s.ctx, gapCollection, report.ID, report); err != nil {
			s.logger.Fatal("saving the report", zap.Error(err))
		}
	}

	pretty, _ := json.MarshalIndent(report, "", "  ")
	s.logger.Info(string(pretty), append(logger.PostingFields(posting.ID, posting.Company, posting.Title),
		zap.String("report_id", report.ID),
	)...)
}
