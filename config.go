package server

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the server's environment-level configuration. Every field
// has a workable default: in particular an empty BackendBaseURL is not
// an error, it switches the label and metadata clients to their
// embedded fallbacks.
type Config struct {
	Addr           string `mapstructure:"addr"`
	BackendBaseURL string `mapstructure:"backend_base_url"`
	StorageRoot    string `mapstructure:"storage_root"`
	StorageHost    string `mapstructure:"storage_host"`
	TuningPath     string `mapstructure:"tuning_path"`
	LogMinSeverity string `mapstructure:"log_min_severity"`
}

const defaultStorageRoot = "https://storage.googleapis.com/phantom-box-assets"

// LoadConfig reads configuration from the environment (PHANTOM_*
// variables) and, when configPath is non-empty, a config file layered
// underneath.
func LoadConfig(configPath string) (Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("backend_base_url", "")
	v.SetDefault("storage_root", defaultStorageRoot)
	v.SetDefault("storage_host", "")
	v.SetDefault("tuning_path", "")
	v.SetDefault("log_min_severity", "info")

	v.SetEnvPrefix("PHANTOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.StorageHost == "" {
		cfg.StorageHost = hostOf(cfg.StorageRoot)
	}
	return cfg, nil
}

func hostOf(rawURL string) string {
	rest, ok := strings.CutPrefix(rawURL, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(rawURL, "http://")
		if !ok {
			return ""
		}
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
