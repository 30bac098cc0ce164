package cmd

import (
	"context"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/worxstance/worxstance/internal/ai/gemini"
	"github.com/worxstance/worxstance/internal/jobs"
)

const defaultParallelism = 3

var extractCmd = &cobra.Command{
	Use:   "extract URL [URL...]",
	Short: "Extract postings from their URLs with Gemini and score them",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		extract(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("title", "t", "", "job title to use when the page does not state one")
	addReviewFlags(extractCmd)
}

func extract(cmd *cobra.Command, urls []string) {
	s := newSession(context.Background())

	generator, err := s.newGenerator()
	if err != nil {
		s.logger.Fatal("creating the ai client", zap.Error(err))
	}
	extractor := gemini.NewExtractor(generator, s.logger)

	title, _ := cmd.Flags().GetString("title")

	results := make([]*jobs.Posting, len(urls))
	var mu sync.Mutex
	failed := 0

	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(s.parallelism())
	for i, u := range urls {
		g.Go(func() error {
			posting, err := extractor.Extract(ctx, u, title)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("extracting posting failed", zap.String("url", u), zap.Error(err))
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = posting
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Fatal("extracting postings", zap.Error(err))
	}

	postings := &jobs.Postings{}
	for _, p := range results {
		if p != nil {
			postings.Items = append(postings.Items, p)
		}
	}

	s.logger.Info("postings extracted", zap.Int("count", postings.Len()), zap.Int("failed", failed))

	if postings.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no postings extracted"))
		return
	}

	review(cmd, s, postings, s.config.Criteria)
}
