package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/scaffold/internal/orchestrator"
)

// Backend providers understood by the binary.
const (
	BackendOllama   = "ollama"
	BackendGemini   = "gemini"
	BackendScripted = "scripted"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCAFFOLD_"

// ErrUnknownBackend is returned by Validate for an unsupported provider.
var ErrUnknownBackend = errors.New("config: unknown backend")

// ProjectConfig holds settings loaded from scaffold.yml. Zero fields mean
// "use the default".
type ProjectConfig struct {
	Backend      string `yaml:"backend,omitempty"`
	Model        string `yaml:"model,omitempty"`
	OllamaHost   string `yaml:"ollamaHost,omitempty"`
	GeminiAPIKey string `yaml:"geminiApiKey,omitempty"`

	Workers          int      `yaml:"workers,omitempty"`
	Threshold        float64  `yaml:"threshold,omitempty"`
	MinLength        int      `yaml:"minLength,omitempty"`
	MaxRegenerations *int     `yaml:"maxRegenerations,omitempty"`
	IncludeTests     *bool    `yaml:"includeTests,omitempty"`
	TestFramework    string   `yaml:"testFramework,omitempty"`
	CoverageTarget   int      `yaml:"coverageTarget,omitempty"`
	SourceExtensions []string `yaml:"sourceExtensions,omitempty"`
	SyntaxCheck      *bool    `yaml:"syntaxCheck,omitempty"`

	CacheSize      int    `yaml:"cacheSize,omitempty"`
	BackendRetries int    `yaml:"backendRetries,omitempty"`
	LogFile        string `yaml:"logFile,omitempty"`
}

// Load reads scaffold.yml or scaffold.yaml from dir, then a .env file in dir
// (existing environment variables win), then SCAFFOLD_* overrides. A missing
// config file is not an error.
func Load(dir string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{}
	for _, name := range []string{"scaffold.yml", "scaffold.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		break
	}

	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ProjectConfig) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst **bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = &b
		return nil
	}

	str("BACKEND", &c.Backend)
	str("MODEL", &c.Model)
	str("OLLAMA_HOST", &c.OllamaHost)
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("TEST_FRAMEWORK", &c.TestFramework)
	str("LOG_FILE", &c.LogFile)
	if v, ok := lookup(EnvPrefix + "SOURCE_EXTENSIONS"); ok && v != "" {
		c.SourceExtensions = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "THRESHOLD"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %sTHRESHOLD: %w", EnvPrefix, err)
		}
		c.Threshold = f
	}
	if v, ok := lookup(EnvPrefix + "MAX_REGENERATIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sMAX_REGENERATIONS: %w", EnvPrefix, err)
		}
		c.MaxRegenerations = &n
	}

	return errors.Join(
		num("WORKERS", &c.Workers),
		num("MIN_LENGTH", &c.MinLength),
		num("COVERAGE_TARGET", &c.CoverageTarget),
		num("CACHE_SIZE", &c.CacheSize),
		num("BACKEND_RETRIES", &c.BackendRetries),
		flag("INCLUDE_TESTS", &c.IncludeTests),
		flag("SYNTAX_CHECK", &c.SyntaxCheck),
	)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// BackendName returns the configured provider, ollama by default.
func (c *ProjectConfig) BackendName() string {
	if c.Backend == "" {
		return BackendOllama
	}
	return strings.ToLower(c.Backend)
}

// Validate checks the provider name and numeric ranges.
func (c *ProjectConfig) Validate() error {
	switch c.BackendName() {
	case BackendOllama, BackendGemini, BackendScripted:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("config: threshold %v outside [0,1]", c.Threshold)
	}
	if c.CoverageTarget < 0 || c.CoverageTarget > 100 {
		return fmt.Errorf("config: coverageTarget %d outside [0,100]", c.CoverageTarget)
	}
	if c.Workers < 0 || c.CacheSize < 0 || c.BackendRetries < 0 {
		return errors.New("config: workers, cacheSize and backendRetries must not be negative")
	}
	return nil
}

// Orchestrator maps c onto a pipeline configuration. logger may be nil.
func (c *ProjectConfig) Orchestrator(logger *log.Logger) orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	if c.Workers > 0 {
		oc.Workers = c.Workers
	}
	if c.Threshold > 0 {
		oc.Threshold = c.Threshold
	}
	if c.MinLength > 0 {
		oc.MinLength = c.MinLength
	}
	if c.MaxRegenerations != nil {
		oc.MaxRegenerations = *c.MaxRegenerations
	}
	if c.IncludeTests != nil {
		oc.IncludeTests = *c.IncludeTests
	}
	if c.TestFramework != "" {
		oc.TestFramework = c.TestFramework
	}
	if c.CoverageTarget > 0 {
		oc.CoverageTarget = c.CoverageTarget
	}
	if len(c.SourceExtensions) > 0 {
		oc.SourceExtensions = c.SourceExtensions
	}
	if c.SyntaxCheck != nil {
		oc.SyntaxCheck = *c.SyntaxCheck
	}
	oc.Logger = logger
	return oc
}

// Attempts returns the total backend attempts per call: one plus retries.
func (c *ProjectConfig) Attempts() int {
	return 1 + c.BackendRetries
}
