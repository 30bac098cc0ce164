package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/logger"
	"github.com/worxstance/worxstance/internal/store"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Manage tracked jobs",
}

var trackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked jobs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		trackList(cmd)
	},
}

var trackStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Move a tracked job to saved, applied, interviewing, offer, rejected or archived",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		trackStatus(args[0], args[1])
	},
}

var trackRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Stop tracking a job",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		trackRemove(args[0])
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.AddCommand(trackListCmd, trackStatusCmd, trackRemoveCmd)

	trackListCmd.Flags().BoolP("watch", "w", false, "keep listing whenever tracked jobs change")
}

func trackList(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := newSession(ctx)

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		list, err := s.tracker.List(ctx)
		if err != nil {
			s.logger.Fatal("listing tracked jobs", zap.Error(err))
		}
		printTracked(s.logger, list)
		return
	}

	updates, err := s.tracker.Watch(ctx)
	if err != nil {
		s.logger.Fatal("watching tracked jobs", zap.Error(err))
	}
	for list := range updates {
		printTracked(s.logger, list)
	}
}

func trackStatus(id, value string) {
	s := newSession(context.Background())

	status, err := jobs.ParseStatus(value)
	if err != nil {
		s.logger.Fatal("parsing status", zap.Error(err))
	}

	if err := s.tracker.SetStatus(s.ctx, id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Fatal("job is not tracked", zap.String(logger.FieldPostingID, id))
		}
		s.logger.Fatal("updating status", zap.Error(err))
	}

	s.logger.Info("status updated", zap.String(logger.FieldPostingID, id), zap.String("status", string(status)))
}

func trackRemove(id string) {
	s := newSession(context.Background())

	if err := s.tracker.Remove(s.ctx, id); err != nil {
		s.logger.Fatal("removing tracked job", zap.Error(err))
	}

	s.logger.Info("job removed", zap.String(logger.FieldPostingID, id))
}

func printTracked(log *zap.Logger, list []*jobs.TrackedJob) {
	log.Info("tracked jobs", zap.Int("count", len(list)))
	for _, j := range list {
		fields := logger.PostingFields(j.ID, j.Company, j.Title)
		fields = append(fields,
			zap.String("status", string(j.Status)),
			zap.Int("match_score", j.MatchScore),
			zap.String("added", j.DateAdded),
		)
		if j.DateApplied != "" {
			fields = append(fields, zap.String("applied", j.DateApplied))
		}
		log.Info("tracked job", fields...)
	}
}
