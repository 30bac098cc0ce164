package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai/gemini"
	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/logger"
	"github.com/worxstance/worxstance/internal/matching"
	"github.com/worxstance/worxstance/internal/networking"
	"github.com/worxstance/worxstance/internal/profile"
	"github.com/worxstance/worxstance/internal/secrets"
	"github.com/worxstance/worxstance/internal/store"
)

// session holds what every command needs. Construction failures are fatal.
type session struct {
	ctx     context.Context
	logger  *zap.Logger
	config  *Config
	profile *profile.MasterProfile
	scorer  *matching.Scorer
	store   store.Store
	tracker *jobs.Tracker
	book    *networking.Book
}

func newSession(ctx context.Context) *session {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting worxstance", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	s := &session{ctx: ctx, logger: logger, config: config}

	s.scorer = matching.NewScorer()
	s.scorer.Skills.MinSubstringLength = config.Matching.MinSubstringLength
	if config.Matching.Workers > 0 {
		s.scorer.Workers = config.Matching.Workers
	}

	s.profile = s.loadProfile()

	st, err := store.NewFileStore(config.Store.Dir, config.Store.AppID, config.User, logger)
	if err != nil {
		logger.Fatal("opening the document store",
			zap.Error(err),
			zap.String("hint", "set the 'user' key in the configuration file or WORXSTANCE_USER environment variable"),
		)
	}
	s.store = st
	s.tracker = jobs.NewTracker(st)
	s.book = networking.NewBook(st)

	return s
}

func (s *session) loadProfile() *profile.MasterProfile {
	path := strings.TrimSpace(s.config.Profile.Path)
	if path == "" {
		s.logger.Warn("no profile configured; postings get neutral scores",
			zap.String("hint", "set profile.path in the configuration file"),
		)
		return nil
	}

	p, err := profile.Load(path)
	if err != nil {
		s.logger.Fatal("loading the profile", zap.Error(err))
	}
	if err := p.Validate(); err != nil {
		s.logger.Fatal("validating the profile", zap.Error(err), zap.String("path", path))
	}

	s.logger.Info("profile loaded",
		zap.String("name", p.FullName),
		zap.Int("skills", len(p.Skills)),
		zap.Int("experience", len(p.Experience)),
	)
	return p
}

func (s *session) newGenerator() (*gemini.Generator, error) {
	cfg := s.config.AI
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("ai is disabled (set ai.enabled in the configuration file)")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	g := cfg.Gemini
	if g == nil {
		g = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: g.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	return gemini.NewGenerator(s.ctx, gemini.Config{
		APIKey:       apiKey,
		Model:        g.Model,
		MaxRetries:   g.MaxRetries,
		MaxLogLength: g.MaxLogLength,
	}, s.logger)
}

// requireProfile stops the command when no profile is configured.
func (s *session) requireProfile(what string) *profile.MasterProfile {
	if s.profile == nil {
		s.logger.Fatal(what+" needs a profile", zap.String("hint", "set profile.path in the configuration file"))
	}
	return s.profile
}

// posting finds id in the jobs file when one is given, otherwise among tracked jobs,
// and attaches a fresh breakdown.
func (s *session) posting(jobsFile, id string) *jobs.Posting {
	var p *jobs.Posting
	if strings.TrimSpace(jobsFile) != "" {
		postings, err := jobs.LoadPostings(jobsFile)
		if err != nil {
			s.logger.Fatal("loading postings", zap.Error(err))
		}
		if p = postings.FindByID(id); p == nil {
			s.logger.Fatal("no such posting", zap.String(logger.FieldPostingID, id), zap.String("path", jobsFile))
		}
	} else {
		tracked, err := s.tracker.Get(s.ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Fatal("job is not tracked", zap.String(logger.FieldPostingID, id),
				zap.String("hint", "pass --jobs to read the posting from a jobs file"),
			)
		}
		if err != nil {
			s.logger.Fatal("reading tracked job", zap.Error(err))
		}
		p = tracked.Posting()
	}

	p.ApplyMatch(s.scorer.Score(p.ForMatching(), s.profile, s.config.Criteria))
	return p
}

func (s *session) parallelism() int {
	if s.config.AI != nil && s.config.AI.Gemini != nil && s.config.AI.Gemini.Parallelism > 0 {
		return s.config.AI.Gemini.Parallelism
	}
	return defaultParallelism
}
