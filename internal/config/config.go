// Package config loads rcscout settings from an optional YAML file, a
// .env file and RCSCOUT_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/rcscout/internal/classifier"
	"github.com/abhisek/rcscout/internal/dataset"
	"github.com/abhisek/rcscout/internal/llm"
	"github.com/abhisek/rcscout/internal/stackexchange"
)

// DefaultPath is read when no config path is given and it exists.
const DefaultPath = "rcscout.yaml"

type Config struct {
	// Stack Exchange API.
	Site         string        `yaml:"site"`
	APIBaseURL   string        `yaml:"api_base_url"`
	APIKey       string        `yaml:"api_key"`
	PageSize     int           `yaml:"page_size"`
	SearchFilter string        `yaml:"search_filter"`
	AnswerFilter string        `yaml:"answer_filter"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`

	// Local state.
	ItemsPath string `yaml:"items_path"`
	ModelDir  string `yaml:"model_dir"`
	DBPath    string `yaml:"db_path"` // empty = store.DefaultDBPath

	// Logging.
	LogDir    string `yaml:"log_dir"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Training and evaluation.
	Classifier  string  `yaml:"classifier"` // "tfidf" or "llm"
	SplitRatio  float64 `yaml:"split_ratio"`
	SplitLimit  int     `yaml:"split_limit"`
	Seed        uint64  `yaml:"seed"` // 0 = clock
	MaxTexts    int     `yaml:"max_texts"`
	FewShot     int     `yaml:"few_shot"`
	Parallelism int     `yaml:"parallelism"`

	LLM llm.Config `yaml:"llm"`
}

func Default() Config {
	return Config{
		Site:         stackexchange.DefaultSite,
		APIBaseURL:   stackexchange.DefaultBaseURL,
		PageSize:     stackexchange.DefaultPageSize,
		SearchFilter: stackexchange.DefaultSearchFilter,
		AnswerFilter: stackexchange.DefaultAnswerFilter,
		HTTPTimeout:  stackexchange.DefaultTimeout,
		ItemsPath:    "./outputs/annotated_qa_items_dict.json",
		ModelDir:     "./outputs/models",
		LogDir:       "./logs",
		LogLevel:     "info",
		LogFormat:    "text",
		Classifier:   "tfidf",
		SplitRatio:   dataset.DefaultRatio,
		MaxTexts:     classifier.DefaultMaxTexts,
		FewShot:      classifier.DefaultFewShot,
		Parallelism:  classifier.DefaultParallelism,
		LLM:          llm.DefaultConfig(),
	}
}

// Load builds the configuration. An explicit path that does not exist is
// an error; the default path is optional.
func Load(path string) (Config, error) {
	// Existing environment wins over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv("RCSCOUT_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	llm.ApplyEnv(&cfg.LLM)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.Site, "RCSCOUT_SITE")
	envOverride(&cfg.APIBaseURL, "RCSCOUT_API_BASE_URL")
	envOverride(&cfg.APIKey, "RCSCOUT_API_KEY")
	envOverride(&cfg.ItemsPath, "RCSCOUT_ITEMS")
	envOverride(&cfg.ModelDir, "RCSCOUT_MODEL_DIR")
	envOverride(&cfg.DBPath, "RCSCOUT_DB")
	envOverride(&cfg.LogDir, "RCSCOUT_LOG_DIR")
	envOverride(&cfg.LogLevel, "RCSCOUT_LOG_LEVEL")
	envOverride(&cfg.LogFormat, "RCSCOUT_LOG_FORMAT")
	envOverride(&cfg.Classifier, "RCSCOUT_CLASSIFIER")

	return errors.Join(
		envOverrideInt(&cfg.PageSize, "RCSCOUT_PAGE_SIZE"),
		envOverrideInt(&cfg.SplitLimit, "RCSCOUT_SPLIT_LIMIT"),
		envOverrideInt(&cfg.MaxTexts, "RCSCOUT_MAX_TEXTS"),
		envOverrideInt(&cfg.FewShot, "RCSCOUT_FEW_SHOT"),
		envOverrideInt(&cfg.Parallelism, "RCSCOUT_PARALLELISM"),
		envOverrideFloat(&cfg.SplitRatio, "RCSCOUT_SPLIT_RATIO"),
		envOverrideUint(&cfg.Seed, "RCSCOUT_SEED"),
		envOverrideDuration(&cfg.HTTPTimeout, "RCSCOUT_HTTP_TIMEOUT"),
	)
}

// Validate checks ranges and, when the LLM classifier is selected, that
// a provider key is available.
func (c *Config) Validate() error {
	switch c.Classifier {
	case "tfidf":
	case "llm":
		if !llm.Discover(&c.LLM) {
			return fmt.Errorf("classifier=llm: %w", c.LLM.Validate())
		}
	default:
		return fmt.Errorf("classifier must be 'tfidf' or 'llm', got %q", c.Classifier)
	}

	if c.SplitRatio <= 0 || c.SplitRatio > 1 {
		return fmt.Errorf("invalid split_ratio %v: must be in (0, 1]", c.SplitRatio)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("invalid page_size %d: must be between 1 and 100", c.PageSize)
	}
	if c.SplitLimit < 0 {
		return fmt.Errorf("invalid split_limit %d: must be >= 0", c.SplitLimit)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("invalid parallelism %d: must be >= 1", c.Parallelism)
	}
	if c.ItemsPath == "" {
		return errors.New("items_path must not be empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json', got %q", c.LogFormat)
	}
	return nil
}

// StackExchange returns the API client settings.
func (c Config) StackExchange() stackexchange.Config {
	return stackexchange.Config{
		BaseURL:      c.APIBaseURL,
		Site:         c.Site,
		Key:          c.APIKey,
		SearchFilter: c.SearchFilter,
		AnswerFilter: c.AnswerFilter,
		Timeout:      c.HTTPTimeout,
	}
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
	}
	*field = parsed
	return nil
}

func envOverrideUint(field *uint64, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
	}
	*field = parsed
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
	}
	*field = parsed
	return nil
}

func envOverrideDuration(field *time.Duration, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
	}
	*field = parsed
	return nil
}
