package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/worxstance/worxstance/internal/filtering"
	"github.com/worxstance/worxstance/internal/matching"
)

const (
	app = "worxstance"

	defaultStoreDir = ".worxstance"
)

type Config struct {
	Profile  *ProfileConfig    `mapstructure:"profile"`
	User     string            `mapstructure:"user"`
	Store    *StoreConfig      `mapstructure:"store"`
	Criteria matching.Criteria `mapstructure:"criteria"`
	Filters  *filtering.Config `mapstructure:"filters"`
	Matching *MatchingConfig   `mapstructure:"matching"`
	AI       *AIConfig         `mapstructure:"ai"`
}

type ProfileConfig struct {
	Path string `mapstructure:"path"`
}

type StoreConfig struct {
	Dir   string `mapstructure:"dir"`
	AppID string `mapstructure:"app-id"`
}

type MatchingConfig struct {
	MinSubstringLength int `mapstructure:"min-substring-length"`
	Workers            int `mapstructure:"workers"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
	Parallelism  int    `mapstructure:"parallelism"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "worxstance scores job postings against your master profile and keeps track of the ones you like",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("user", "WORXSTANCE_USER"); err != nil {
		log.Fatalf("binding WORXSTANCE_USER environment variable: %v", err)
	}

	cobra.OnInitialize(loadDotEnv, initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is worxstance.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// loadDotEnv reads .env from the working directory without overriding variables already set.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	viper.SetDefault("store.dir", defaultStoreDir)
	viper.SetDefault("criteria.location", "")
	viper.SetDefault("criteria.remote", false)
	viper.SetDefault("filters.minimum-score", 0)
	viper.SetDefault("ai.provider", "gemini")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without a config file every command still runs on defaults and flags.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Profile == nil {
		config.Profile = &ProfileConfig{}
	}
	if config.Store == nil {
		config.Store = &StoreConfig{Dir: defaultStoreDir}
	}
	if config.Filters == nil {
		config.Filters = &filtering.Config{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}

	return config, nil
}
