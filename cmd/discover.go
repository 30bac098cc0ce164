package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai/gemini"
	"github.com/worxstance/worxstance/internal/matching"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Ask Gemini for open postings that fit the profile and score them",
	Run: func(cmd *cobra.Command, _ []string) {
		discover(cmd)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().String("role", "", "role to search for (default is the first target role of the profile)")
	discoverCmd.Flags().String("location", "", "location to search in (default is criteria.location)")
	discoverCmd.Flags().Bool("remote", false, "search remote positions only (default is criteria.remote)")
	discoverCmd.Flags().String("level", "", "experience level: entry, mid, senior, lead or executive")
	discoverCmd.Flags().Int("limit", 0, "maximum number of postings to ask for")
	addReviewFlags(discoverCmd)
}

func discover(cmd *cobra.Command) {
	s := newSession(context.Background())

	query := searchQuery(cmd, s)

	generator, err := s.newGenerator()
	if err != nil {
		s.logger.Fatal("creating the ai client", zap.Error(err))
	}

	s.logger.Info("starting the search",
		zap.String("role", query.Role),
		zap.String("location", query.Location),
		zap.Bool("remote", query.Remote),
	)

	postings, err := gemini.NewDiscoverer(generator, s.logger).Discover(s.ctx, query, s.profile)
	if err != nil {
		s.logger.Fatal("discovering postings", zap.Error(err))
	}

	if postings.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	review(cmd, s, postings, matching.Criteria{Location: query.Location, IsRemote: query.Remote})
}

func searchQuery(cmd *cobra.Command, s *session) gemini.SearchQuery {
	query := gemini.SearchQuery{
		Location: s.config.Criteria.Location,
		Remote:   s.config.Criteria.IsRemote,
	}
	if s.profile != nil && len(s.profile.TargetRoles) > 0 {
		query.Role = s.profile.TargetRoles[0]
	}

	if v, _ := cmd.Flags().GetString("role"); strings.TrimSpace(v) != "" {
		query.Role = v
	}
	if v, _ := cmd.Flags().GetString("location"); strings.TrimSpace(v) != "" {
		query.Location = v
	}
	if cmd.Flags().Changed("remote") {
		query.Remote, _ = cmd.Flags().GetBool("remote")
	}
	query.ExperienceLevel, _ = cmd.Flags().GetString("level")
	query.Limit, _ = cmd.Flags().GetInt("limit")

	if err := query.Validate(); err != nil {
		s.logger.Fatal("checking the search", zap.Error(err),
			zap.String("hint", "pass --role and --location or set profile target roles and criteria.location"),
		)
	}
	return query
}
