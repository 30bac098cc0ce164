package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai/gemini"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor ID",
	Short: "Rewrite the profile summary and achievements for a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tailor(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(tailorCmd)

	tailorCmd.Flags().String("jobs", "", "read the posting from this jobs file instead of tracked jobs")
	tailorCmd.Flags().StringP("output", "o", "", "write the tailored resume as JSON to this file")
}

func tailor(cmd *cobra.Command, id string) {
	s := newSession(context.Background())
	candidate := s.requireProfile("tailoring")

	jobsFile, _ := cmd.Flags().GetString("jobs")
	posting := s.posting(jobsFile, id)

	generator, err := s.newGenerator()
	if err != nil {
		s.logger.Fatal("creating the ai client", zap.Error(err))
	}

	resume, err := gemini.NewResumeTailor(generator, s.logger).Tailor(s.ctx, posting, candidate)
	if err != nil {
		s.logger.Fatal("tailoring the resume", zap.Error(err))
	}

	pretty, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		s.logger.Fatal("encoding the resume", zap.Error(err))
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		s.logger.Info(string(pretty), zap.Int("local_score", posting.MatchScore))
		return
	}

	if err := os.WriteFile(output, pretty, 0o644); err != nil {
		s.logger.Fatal("writing the resume", zap.Error(err))
	}
	s.logger.Info("tailored resume written", zap.String("filename", output), zap.Int("match_score", resume.MatchScore))
}
