package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Auth        AuthConfig        `mapstructure:"auth"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Quiz        QuizConfig        `mapstructure:"quiz"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Results     ResultsConfig     `mapstructure:"results"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Env            string   `mapstructure:"env"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
}

type QuizConfig struct {
	MinQuestions      int    `mapstructure:"min_questions"`
	MaxQuestions      int    `mapstructure:"max_questions"`
	DefaultQuestions  int    `mapstructure:"default_questions"`
	DefaultDifficulty string `mapstructure:"default_difficulty"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type ResultsConfig struct {
	Store string `mapstructure:"store"` // "mongo" | "sql"
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LeaderboardConfig struct {
	DefaultLimit    int           `mapstructure:"default_limit"`
	MaxLimit        int           `mapstructure:"max_limit"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RefreshSchedule string        `mapstructure:"refresh_schedule"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "dev",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Log:  LogConfig{Level: "info"},
		Auth: AuthConfig{TokenTTL: 7 * 24 * time.Hour},
		LLM: LLMConfig{
			Provider:    "gemini",
			Timeout:     15 * time.Second,
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Quiz: QuizConfig{
			MinQuestions:      1,
			MaxQuestions:      20,
			DefaultQuestions:  5,
			DefaultDifficulty: "easy",
		},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Name:       "quizly",
			SSLMode:    "disable",
			SQLitePath: "quizly.db",
		},
		Results: ResultsConfig{Store: "mongo"},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "quizly",
			Collection: "quiz_results",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Leaderboard: LeaderboardConfig{
			DefaultLimit:    20,
			MaxLimit:        100,
			CacheTTL:        time.Minute,
			RefreshSchedule: "@every 5m",
		},
	}
}

// conventional variable names accepted next to the derived SECTION_KEY form
var envAliases = map[string][]string{
	"server.port":       {"PORT"},
	"server.env":        {"APP_ENV"},
	"auth.jwt_secret":   {"JWT_SECRET"},
	"llm.provider":      {"AI_PROVIDER"},
	"database.host":     {"POSTGRES_HOST"},
	"database.port":     {"POSTGRES_PORT"},
	"database.user":     {"POSTGRES_USER"},
	"database.password": {"POSTGRES_PASSWORD"},
	"database.name":     {"POSTGRES_DB"},
	"mongo.uri":         {"MONGO_URI"},
	"redis.addr":        {"REDIS_ADDR"},
}

// Load fills config (a pointer to a struct) from its current values, an
// optional config file and the environment, in increasing precedence.
func Load(file string, config any) error {
	v := viper.New()
	m := make(map[string]any)

	if err := mapstructure.Decode(config, &m); err != nil {
		return fmt.Errorf("mapstructure: %v", err)
	}

	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("merge config map: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind env %s: %v", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config from file %s: %v", file, err)
		}
	}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("unmarshal config: %v", err)
	}

	return nil
}

// LoadConfig reads CONFIG_PATH (optional) and the environment on top of Default.
func LoadConfig() (*Config, error) {
	cfg := Default()
	if err := Load(os.Getenv("CONFIG_PATH"), cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// providerEnv names the per-provider variables for llm.api_key and llm.model.
// They apply only to the selected provider and yield to LLM_API_KEY and
// LLM_MODEL.
var providerEnv = map[string]struct{ apiKey, model string }{
	"gemini": {"GEMINI_API_KEY", "GEMINI_MODEL"},
	"groq":   {"GROQ_API_KEY", "GROQ_MODEL"},
}

func (c *Config) applyProviderEnv() {
	names, ok := providerEnv[c.LLM.Provider]
	if !ok {
		return
	}
	if _, set := os.LookupEnv("LLM_API_KEY"); !set {
		if v, set := os.LookupEnv(names.apiKey); set {
			c.LLM.APIKey = v
		}
	}
	if _, set := os.LookupEnv("LLM_MODEL"); !set {
		if v, set := os.LookupEnv(names.model); set {
			c.LLM.Model = v
		}
	}
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.applyProviderEnv()
	c.Results.Store = strings.ToLower(strings.TrimSpace(c.Results.Store))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Quiz.DefaultDifficulty = strings.ToLower(strings.TrimSpace(c.Quiz.DefaultDifficulty))
}

func (c *Config) IsDev() bool {
	return c.Server.Env == "dev" || c.Server.Env == "test"
}

var (
	supportedProviders = map[string]bool{"gemini": true, "groq": true}
	supportedStores    = map[string]bool{"mongo": true, "sql": true}
	supportedDrivers   = map[string]bool{"postgres": true, "sqlite": true}
	validDifficulties  = map[string]bool{"easy": true, "medium": true, "hard": true}
)

func validateConfig(c *Config) error {
	var errs []error

	if !supportedProviders[c.LLM.Provider] {
		errs = append(errs, fmt.Errorf("unsupported AI provider: %s. Currently supported: gemini, groq", c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	if !supportedStores[c.Results.Store] {
		errs = append(errs, fmt.Errorf("unsupported results store: %s", c.Results.Store))
	}
	if !supportedDrivers[c.Database.Driver] {
		errs = append(errs, fmt.Errorf("unsupported database driver: %s", c.Database.Driver))
	}
	q := c.Quiz
	if q.MinQuestions < 1 || q.MaxQuestions < q.MinQuestions ||
		q.DefaultQuestions < q.MinQuestions || q.DefaultQuestions > q.MaxQuestions {
		errs = append(errs, fmt.Errorf("invalid quiz bounds: min=%d max=%d default=%d", q.MinQuestions, q.MaxQuestions, q.DefaultQuestions))
	}
	if !validDifficulties[q.DefaultDifficulty] {
		errs = append(errs, fmt.Errorf("invalid default difficulty: %s", q.DefaultDifficulty))
	}
	if c.Auth.JWTSecret == "" && !c.IsDev() {
		errs = append(errs, errors.New("JWT_SECRET is required outside dev"))
	}

	return errors.Join(errs...)
}
