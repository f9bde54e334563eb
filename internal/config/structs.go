//nolint:lll
package config

// Config is the complete wordgen configuration. It is shared by the generate,
// batch and serve commands and is loaded from defaults, a config file,
// WORDGEN_* environment variables and command-line flags, in that order.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	ModelPath string `mapstructure:"model" yaml:"model" json:"model"`
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`

	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder" json:"decoder"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`
	Batch   BatchConfig   `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// DecoderConfig contains greedy and beam decoder settings.
type DecoderConfig struct {
	BeamWidth         int `mapstructure:"beam_width" yaml:"beam_width" json:"beam_width"`
	MaxSentenceLength int `mapstructure:"max_sentence_length" yaml:"max_sentence_length" json:"max_sentence_length"`
	MaxRounds         int `mapstructure:"max_rounds" yaml:"max_rounds" json:"max_rounds"`
	MaxGreedySteps    int `mapstructure:"max_greedy_steps" yaml:"max_greedy_steps" json:"max_greedy_steps"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format   string `mapstructure:"format" yaml:"format" json:"format"`
	File     string `mapstructure:"file" yaml:"file" json:"file"`
	TopWords int    `mapstructure:"top_words" yaml:"top_words" json:"top_words"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string `mapstructure:"host" yaml:"host" json:"host"`
	Port              int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin        string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	TimeoutSec        int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout   int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBodyKB         int    `mapstructure:"max_body_kb" yaml:"max_body_kb" json:"max_body_kb"`
	RateLimitEnabled  bool   `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int    `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int    `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
}

// BatchConfig contains multi-model generation settings.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
