package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultDatabase = "keepline.db"

// Config is the layered CLI configuration. Values come from, in increasing
// precedence: defaults, .keepline.yaml, KEEPLINE_* environment variables and
// explicitly set flags.
type Config struct {
	DB       string `mapstructure:"db"`
	Format   string `mapstructure:"format"`
	LogLevel string `mapstructure:"log_level"`
	Verbose  bool   `mapstructure:"verbose"`
}

// bindFlags ties the persistent flags to their config keys, so a flag the
// user sets wins over the file and the environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	_ = v.BindPFlag("db", flags.Lookup("db"))
	_ = v.BindPFlag("format", flags.Lookup("format"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
}

// loadConfig reads configuration into v. With cfgFile empty, .keepline.yaml
// is looked up in the working directory and then the home directory; a
// missing file is fine. An explicit cfgFile must exist.
func loadConfig(v *viper.Viper, cfgFile string) (Config, error) {
	v.SetDefault("db", defaultDatabase)
	v.SetDefault("format", "text")
	v.SetDefault("log_level", "warn")
	v.SetDefault("verbose", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".keepline")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("KEEPLINE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// apply copies resolved values into the root options.
func (c Config) apply(opts *RootOptions) {
	opts.Database = c.DB
	opts.Format = c.Format
	opts.LogLevel = c.LogLevel
	opts.Verbose = c.Verbose
}
