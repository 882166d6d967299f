package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the troubleshooting service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Search    SearchConfig    `mapstructure:"search"`
	TLS       TLSConfig       `mapstructure:"tls"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	// Locale used when a request does not carry one.
	DefaultLocale string `mapstructure:"default_locale"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// CorpusConfig points at the local evidence index.
type CorpusConfig struct {
	DefaultDir string `mapstructure:"default_dir"`
	TopK       int    `mapstructure:"top_k"`
}

func (c CorpusConfig) Normalize() CorpusConfig {
	c.DefaultDir = strings.TrimSpace(c.DefaultDir)
	if c.DefaultDir == "" {
		c.DefaultDir = "./db"
	}
	if c.TopK <= 0 {
		c.TopK = 10
	}
	return c
}

// SearchConfig contains web search settings
type SearchConfig struct {
	// Backend pins a single backend (serper, brave, html). Empty means the default chain.
	// The legacy names ddgs and duckduckgo_search are accepted.
	Backend        string        `mapstructure:"backend"`
	StrictMatch    bool          `mapstructure:"strict_match"`
	MaxResults     int           `mapstructure:"max_results"`
	Region         string        `mapstructure:"region"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SerperAPIKey   string        `mapstructure:"serper_api_key"`
	SerperEndpoint string        `mapstructure:"serper_endpoint"`
	BraveAPIKey    string        `mapstructure:"brave_api_key"`
	BraveEndpoint  string        `mapstructure:"brave_endpoint"`
	HTMLEndpoint   string        `mapstructure:"html_endpoint"`
	MinLenPrimary  int           `mapstructure:"min_len_primary"`
	MinLenFallback int           `mapstructure:"min_len_secondary"`
	LastResortPass bool          `mapstructure:"last_resort_pass"`
}

// legacyBackends maps the backend names older deployments export through
// WEB_SEARCH_BACKEND onto the backend holding the same slot in the chain.
var legacyBackends = map[string]string{
	"ddgs":              "serper",
	"duckduckgo_search": "brave",
}

// Normalize applies defaults for unset search values.
func (s SearchConfig) Normalize() SearchConfig {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if b, ok := legacyBackends[s.Backend]; ok {
		s.Backend = b
	}
	if s.MaxResults <= 0 {
		s.MaxResults = 6
	}
	if strings.TrimSpace(s.Region) == "" {
		s.Region = "wt-wt"
	}
	if s.Timeout <= 0 {
		s.Timeout = 12 * time.Second
	}
	if s.SerperEndpoint == "" {
		s.SerperEndpoint = "https://google.serper.dev/search"
	}
	if s.BraveEndpoint == "" {
		s.BraveEndpoint = "https://api.search.brave.com/res/v1/web/search"
	}
	if s.HTMLEndpoint == "" {
		s.HTMLEndpoint = "https://html.duckduckgo.com/html/"
	}
	if s.MinLenPrimary <= 0 {
		s.MinLenPrimary = 220
	}
	if s.MinLenFallback <= 0 {
		s.MinLenFallback = 60
	}
	return s
}

func (s SearchConfig) Validate() error {
	switch s.Backend {
	case "", "serper", "brave", "html":
	default:
		return fmt.Errorf("search.backend must be one of serper, brave, html (got %q)", s.Backend)
	}
	if s.MinLenFallback > s.MinLenPrimary {
		return fmt.Errorf("search.min_len_secondary must not exceed search.min_len_primary")
	}
	return nil
}

// TLSConfig is deployment-level transport security for outbound HTTP.
type TLSConfig struct {
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
	CABundle           string `mapstructure:"ca_bundle"`
}

func (t TLSConfig) Validate() error {
	if t.CABundle == "" {
		return nil
	}
	if _, err := os.Stat(t.CABundle); err != nil {
		return fmt.Errorf("tls.ca_bundle: %w", err)
	}
	return nil
}

// FetchConfig controls page download and text extraction.
type FetchConfig struct {
	// Renderer is "http" or "chromedp".
	Renderer string        `mapstructure:"renderer"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxChars int           `mapstructure:"max_chars"`
}

func (f FetchConfig) Normalize() FetchConfig {
	f.Renderer = strings.ToLower(strings.TrimSpace(f.Renderer))
	if f.Renderer == "" {
		f.Renderer = "http"
	}
	if f.Timeout <= 0 {
		f.Timeout = 12 * time.Second
	}
	if f.MaxChars <= 0 {
		f.MaxChars = 20000
	}
	return f
}

func (f FetchConfig) Validate() error {
	if f.Renderer != "http" && f.Renderer != "chromedp" {
		return fmt.Errorf("fetch.renderer must be http or chromedp (got %q)", f.Renderer)
	}
	if f.Timeout < 10*time.Second || f.Timeout > 15*time.Second {
		return fmt.Errorf("fetch.timeout must be between 10s and 15s")
	}
	return nil
}

// LLMConfig contains the chat-completion provider used by the analysis and guidance services
type LLMConfig struct {
	Type        string        `mapstructure:"type"` // openai or any compatible endpoint
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Normalize() LLMConfig {
	if l.Type == "" {
		l.Type = "openai"
	}
	if l.BaseURL == "" {
		l.BaseURL = "https://api.openai.com/v1"
	}
	if l.Model == "" {
		l.Model = "gpt-4o-mini"
	}
	if l.Timeout <= 0 {
		l.Timeout = 60 * time.Second
	}
	if l.MaxRetries < 0 {
		l.MaxRetries = 0
	}
	return l
}

// TelemetryConfig contains tracing settings. Metrics are always served on /metrics.
type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	// Checkpoints is "memory", "redis" or "none".
	Checkpoints string      `mapstructure:"checkpoints"`
	Redis       RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

func (s StorageConfig) Validate() error {
	switch s.Checkpoints {
	case "none", "memory":
		return nil
	case "redis":
		return s.Redis.Validate()
	default:
		return fmt.Errorf("storage.checkpoints must be none, memory or redis (got %q)", s.Checkpoints)
	}
}

// legacyEnv maps config keys onto the environment names older deployments already export.
var legacyEnv = map[string][]string{
	"search.strict_match":      {"STRICT_ORA_MATCH"},
	"search.backend":           {"WEB_SEARCH_BACKEND"},
	"tls.insecure_skip_verify": {"INSECURE_SKIP_VERIFY"},
	"tls.ca_bundle":            {"REQUESTS_CA_BUNDLE", "SSL_CERT_FILE"},
	"search.serper_api_key":    {"SERPER_API_KEY"},
	"search.brave_api_key":     {"BRAVE_API_KEY"},
	"llm.api_key":              {"OPENAI_API_KEY"},
}

// LoadConfig loads config from file and environment. A missing config file is not an error
// unless path names one explicitly.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name

	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_locale", "en")
	v.SetDefault("server.address", ":10001")
	v.SetDefault("corpus.default_dir", "./db")
	v.SetDefault("corpus.top_k", 10)
	v.SetDefault("search.strict_match", true)
	v.SetDefault("search.max_results", 6)
	v.SetDefault("search.region", "wt-wt")
	v.SetDefault("search.timeout", 12*time.Second)
	v.SetDefault("search.min_len_primary", 220)
	v.SetDefault("search.min_len_secondary", 60)
	v.SetDefault("search.last_resort_pass", true)
	v.SetDefault("fetch.renderer", "http")
	v.SetDefault("fetch.timeout", 12*time.Second)
	v.SetDefault("fetch.max_chars", 20000)
	v.SetDefault("llm.type", "openai")
	v.SetDefault("llm.max_tokens", 1200)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("telemetry.service_name", "oratriage")
	v.SetDefault("storage.checkpoints", "memory")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.ttl", 24*time.Hour)

	if path == "" {
		v.AddConfigPath("./config") // path to look for the config file in
		v.AddConfigPath(".")        // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)                                // bin/
		v.AddConfigPath(filepath.Join(exeDir, ".."))           // repo root
		v.AddConfigPath(filepath.Join(exeDir, "..", "config")) // repo root/config
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("ORATRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // read in environment variables that match (ORATRIAGE_*)
	for key, names := range legacyEnv {
		args := append([]string{key, "ORATRIAGE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Corpus = cfg.Corpus.Normalize()
	cfg.Search = cfg.Search.Normalize()
	cfg.Fetch = cfg.Fetch.Normalize()
	cfg.LLM = cfg.LLM.Normalize()

	if err := cfg.Search.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Fetch.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.TLS.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
