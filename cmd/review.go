package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/filtering"
	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/logger"
	"github.com/worxstance/worxstance/internal/matching"
)

const (
	PromptTrackAll            = "Track all postings"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptReportByCompany     = "Report by company"
	PromptManualTrack         = "Track postings in manual mode"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
	PromptPostingsToFile      = "Dump postings to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptTrackAll, PromptNo, PromptReportByCompany, PromptManualTrack, PromptPostingsToFile},
}

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("include-tracked", "f", false, "do not exclude postings that are already tracked")
	cmd.Flags().BoolP("auto-approve", "y", false, "track every posting left after filters without asking")
	cmd.Flags().StringP("exclude-file", "e", "", "file with postings to exclude (overrides filters.exclude-file)")
	cmd.Flags().Int("minimum-score", -1, "drop postings scoring below this value (overrides filters.minimum-score)")
}

// review scores and filters postings, prints the result and runs the action loop.
func review(cmd *cobra.Command, s *session, postings *jobs.Postings, criteria matching.Criteria) {
	cfg := *s.config.Filters
	if v := strings.TrimSpace(cmd.Flag("exclude-file").Value.String()); v != "" {
		cfg.ExcludeFile = v
	}
	if v, err := cmd.Flags().GetInt("minimum-score"); err == nil && v >= 0 {
		cfg.MinimumScore = v
	}
	includeTracked, _ := cmd.Flags().GetBool("include-tracked")

	steps := filtering.Default(includeTracked)
	if s.profile == nil {
		filtering.DisableByName(steps, "minimum_score", "no profile loaded")
	}

	deps := filtering.Deps{
		Scorer:   s.scorer,
		Profile:  s.profile,
		Criteria: criteria,
		Tracked:  s.tracker,
		Logger:   s.logger,
	}

	for _, st := range filtering.Describe(steps) {
		s.logger.Debug("filter status",
			zap.String("name", st.Name),
			zap.Bool("enabled", st.Enabled),
			zap.String("reason", st.Reason),
			zap.Any("details", st.Details),
		)
	}

	filtered, _, err := filtering.Run(s.ctx, &cfg, deps, steps, postings)
	if err != nil {
		s.logger.Fatal("filtering failed", zap.Error(err))
	}
	postings = filtered

	if postings.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	postings.SortByScore()
	printPostings(s.logger, postings)

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	action := PromptTrackAll
	for {
		var err error
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				s.logger.Fatal("exiting", zap.Error(err))
			}
		}

		s.logger.Info("current list of postings", zap.Int("count", postings.Len()))

		if err := handleAction(action, s, &cfg, postings); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			s.logger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove || postings.Len() == 0 {
			return
		}
	}
}

func handleAction(action string, s *session, cfg *filtering.Config, postings *jobs.Postings) error {
	switch action {
	case PromptTrackAll:
		if err := track(s, postings); err != nil {
			return err
		}
		postings.Items = nil
		return nil
	case PromptNo:
		s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptManualTrack:
		return manualTrack(s, cfg, postings)
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(postings.ReportByCompany(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("postings count", postings.Len()))
		return nil
	case PromptPostingsToFile:
		filename, err := postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func manualTrack(s *session, cfg *filtering.Config, postings *jobs.Postings) error {
	for {
		items := make([]string, 0, postings.Len()+2)
		for _, p := range postings.Items {
			items = append(items, fmt.Sprintf("%s %d%% %s / %s / %s", p.ID, p.MatchScore, p.Title, p.Company, p.Location))
		}

		excludeFile := strings.TrimSpace(cfg.ExcludeFile)
		if excludeFile != "" && postings.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		postingPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := postingPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptBack:
			return nil
		case PromptAppendToExcludeFile:
			excluded, err := jobs.GetExcludedPostingsFromFile(excludeFile)
			if err != nil {
				return err
			}

			excluded.Append(postings.ToExcluded())

			if err = excluded.ToFile(excludeFile); err != nil {
				return err
			}

			s.logger.Info("appended to exclude file", zap.String("filename", excludeFile))

			postings.Exclude(jobs.PostingIDField, excluded.IDs())
		default:
			id := strings.Split(selected, " ")[0]

			posting := postings.FindByID(id)
			if posting == nil {
				return fmt.Errorf("there is no such posting id %s", id)
			}

			if err = track(s, &jobs.Postings{Items: []*jobs.Posting{posting}}); err != nil {
				return err
			}

			postings.Exclude(jobs.PostingIDField, []string{id})
		}
	}
}

func track(s *session, postings *jobs.Postings) error {
	for _, p := range postings.Items {
		job, err := s.tracker.Track(s.ctx, p)
		if err != nil {
			return err
		}

		s.logger.Info("tracking posting", append(logger.PostingFields(job.ID, job.Company, job.Title),
			zap.String("status", string(job.Status)),
		)...)
	}

	s.logger.Info("tracked postings", zap.Int("count", postings.Len()))
	return nil
}

func printPostings(log *zap.Logger, postings *jobs.Postings) {
	for _, p := range postings.Items {
		fields := logger.PostingFields(p.ID, p.Company, p.Title)
		fields = append(fields,
			zap.String("location", p.Location),
			zap.Int("match_score", p.MatchScore),
		)
		if m := p.Match; m != nil {
			fields = append(fields,
				zap.Int("skills", m.SkillsMatch),
				zap.Int("experience", m.ExperienceMatch),
				zap.Int("role", m.RoleRelevance),
				zap.Int("location_match", m.LocationMatch),
				zap.String("level", string(m.ExperienceLevel)),
				zap.Strings("missing_required", m.MissingRequiredSkills),
			)
		}
		if p.MatchRationale != "" {
			fields = append(fields, zap.String("rationale", p.MatchRationale))
		}
		if p.URL != "" {
			fields = append(fields, zap.String("url", p.URL))
		}
		if a := p.AnalyzeURL(); a.IsProblematic() {
			fields = append(fields, zap.String("url_problem", a.Reason), zap.String("search_url", a.SearchURL))
		}

		log.Info("posting", fields...)
	}
}
