package config

// Config is the parsed .redactbench/config.yml.
type Config struct {
	Version int           `yaml:"version"`
	Model   ModelConfig   `yaml:"model"`
	Storage StorageConfig `yaml:"storage"`
	Scoring ScoringConfig `yaml:"scoring"`
	Runner  RunnerConfig  `yaml:"runner"`
	Log     LogConfig     `yaml:"log"`
}

// ModelConfig selects the language-model endpoint used as oracle.
type ModelConfig struct {
	Provider        string `yaml:"provider"`
	Name            string `yaml:"name"`
	BaseURL         string `yaml:"base_url"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type ScoringConfig struct {
	Threshold float64 `yaml:"threshold"`
}

type RunnerConfig struct {
	Workers int `yaml:"workers"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

// Storage backends.
const (
	BackendJSONL  = "jsonl"
	BackendDuckDB = "duckdb"
)

// Providers.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Environment variables read at load time.
const (
	EnvAPIKey   = "LLM_API_KEY"
	EnvProvider = "LLM_PROVIDER"
	EnvModel    = "LLM_MODEL"
)
