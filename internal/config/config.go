package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/outreach-cli/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Apify    ApifyConfig    `yaml:"apify" mapstructure:"apify"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	HeyReach HeyReachConfig `yaml:"heyreach" mapstructure:"heyreach"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Pricing  cost.Rates     `yaml:"pricing" mapstructure:"pricing"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DataDir     string `yaml:"data_dir" mapstructure:"data_dir"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ApifyConfig holds Apify actor settings.
type ApifyConfig struct {
	Token               string `yaml:"token" mapstructure:"token"`
	BaseURL             string `yaml:"base_url" mapstructure:"base_url"`
	GoogleSearchActor   string `yaml:"google_search_actor" mapstructure:"google_search_actor"`
	PostReactionsActor  string `yaml:"post_reactions_actor" mapstructure:"post_reactions_actor"`
	ProfileScraperActor string `yaml:"profile_scraper_actor" mapstructure:"profile_scraper_actor"`
	InitialWaitSecs     int    `yaml:"initial_wait_secs" mapstructure:"initial_wait_secs"`
	PollIntervalSecs    int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	PollTimeoutSecs     int    `yaml:"poll_timeout_secs" mapstructure:"poll_timeout_secs"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"`
	Key            string `yaml:"key" mapstructure:"key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	Model          string `yaml:"model" mapstructure:"model"`
	AnthropicKey   string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	AnthropicModel string `yaml:"anthropic_model" mapstructure:"anthropic_model"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// HeyReachConfig holds HeyReach API settings.
type HeyReachConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	ChunkSize int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	RateRPS   float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// PipelineConfig configures qualification and message generation.
type PipelineConfig struct {
	AllowedCountries []string `yaml:"allowed_countries" mapstructure:"allowed_countries"`
	MinReactions     int      `yaml:"min_reactions" mapstructure:"min_reactions"`
	MaxWorkers       int      `yaml:"max_workers" mapstructure:"max_workers"`
	ICPCriteria      string   `yaml:"icp_criteria" mapstructure:"icp_criteria"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "json")
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("store.sqlite_path", "data/outreach.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.google_search_actor", "apify~google-search-scraper")
	v.SetDefault("apify.post_reactions_actor", "curious_coder~linkedin-post-reactions-scraper")
	v.SetDefault("apify.profile_scraper_actor", "dev_fusion~linkedin-profile-scraper")
	v.SetDefault("apify.initial_wait_secs", 120)
	v.SetDefault("apify.poll_interval_secs", 30)
	v.SetDefault("apify.poll_timeout_secs", 900)
	v.SetDefault("llm.provider", "deepseek")
	v.SetDefault("llm.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.anthropic_model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("heyreach.base_url", "https://api.heyreach.io/api/public")
	v.SetDefault("heyreach.chunk_size", 100)
	v.SetDefault("heyreach.rate_rps", 2)
	v.SetDefault("pipeline.allowed_countries", []string{"United States", "Canada", "United Kingdom", "Australia"})
	v.SetDefault("pipeline.min_reactions", 50)
	v.SetDefault("pipeline.max_workers", 5)
	v.SetDefault("pricing.apify.google_search_result", 0.004)
	v.SetDefault("pricing.apify.post_scrape", 0.008)
	v.SetDefault("pricing.apify.profile_scrape", 0.025)
	v.SetDefault("pricing.llm.input_per_mtok", 0.14)
	v.SetDefault("pricing.llm.output_per_mtok", 0.28)
	v.SetDefault("pricing.llm.avg_icp_tokens", 400)
	v.SetDefault("pricing.llm.avg_personalization_tokens", 800)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings required for the given mode are present.
// Modes: "pipeline" (run/search/monitor/personalize), "serve", "export",
// "lookup".
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	switch mode {
	case "pipeline":
		check(c.Apify.Token != "", "apify.token is required")
		check(c.HeyReach.Key != "", "heyreach.key is required")
		check(c.Pipeline.MaxWorkers >= 1 && c.Pipeline.MaxWorkers <= 50,
			"pipeline.max_workers must be between 1 and 50")
	case "serve":
		check(c.Server.Port > 0, "server.port must be > 0")
	case "export", "lookup":
		// Store settings have defaults; nothing mandatory.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "json", "sqlite":
	case "postgres":
		check(c.Store.DatabaseURL != "", "store.database_url is required for the postgres driver")
	default:
		problems = append(problems, "store.driver must be json, sqlite, or postgres")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
