package cmd

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/inboxmcp/internal/google"
	"github.com/teemow/inboxmcp/internal/logging"
	"github.com/teemow/inboxmcp/internal/server"
)

// envPrefix namespaces environment overrides, e.g. INBOXMCP_TOKEN_FILE.
const envPrefix = "INBOXMCP"

// Config is the merged view of flags, environment and config file.
type Config struct {
	TokenFile       string `mapstructure:"token-file"`
	CredentialsFile string `mapstructure:"credentials-file"`
	AuthListenAddr  string `mapstructure:"auth-listen-addr"`

	FetchConcurrency int  `mapstructure:"fetch-concurrency"`
	StrictArgs       bool `mapstructure:"strict-args"`
	ExtendedTools    bool `mapstructure:"extended-tools"`

	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log-format"`

	MetricsEnabled bool   `mapstructure:"metrics-enabled"`
	MetricsAddr    string `mapstructure:"metrics-addr"`
}

// addGlobalFlags registers the flags shared by every command.
func addGlobalFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Config file (YAML, TOML or JSON)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-format", logging.FormatText, "Log format: text or json")
	flags.String("token-file", google.DefaultTokenFile, "Path of the persisted OAuth token")
	flags.String("credentials-file", google.DefaultCredentialsFile, "Path of the OAuth client-secret file")
	flags.String("auth-listen-addr", google.DefaultListenAddr, "Loopback address for the OAuth consent callback")
}

// addServeFlags registers the flags of the serve command.
func addServeFlags(flags *pflag.FlagSet) {
	flags.Int("fetch-concurrency", server.DefaultFetchConcurrency, "Maximum parallel Gmail calls within one tool call")
	flags.Bool("strict-args", false, "Validate tool arguments against their input schema before dispatch")
	flags.Bool("extended-tools", false, "Also register search_emails and read_email")
	flags.Bool("metrics-enabled", false, "Serve /metrics, /healthz and /readyz on a dedicated port")
	flags.String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
}

// loadConfig merges flags with INBOXMCP_* environment variables, a .env file
// in the working directory and the file named by --config. Flags that were set
// explicitly win.
func loadConfig(flags *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, nil
}
