package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TASKDESK"

type Config struct {
	Env     string        `mapstructure:"env" yaml:"env"`
	LogFile string        `mapstructure:"log_file" yaml:"log_file"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
	RPC     RPCConfig     `mapstructure:"rpc" yaml:"rpc"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
}

type HTTPConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type RPCConfig struct {
	Addr        string        `mapstructure:"addr" yaml:"addr"`
	CallTimeout time.Duration `mapstructure:"call_timeout" yaml:"call_timeout"`
}

type StorageConfig struct {
	Path     string        `mapstructure:"path" yaml:"path"`
	Secret   string        `mapstructure:"secret" yaml:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

type UIConfig struct {
	FeedbackDuration time.Duration `mapstructure:"feedback_duration" yaml:"feedback_duration"`
	RedirectDelay    time.Duration `mapstructure:"redirect_delay" yaml:"redirect_delay"`
}

type BackendConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", envLocal)
	v.SetDefault("log_file", "")
	v.SetDefault("http.addr", ":3001")
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("rpc.addr", "localhost:50051")
	v.SetDefault("rpc.call_timeout", time.Duration(0))
	v.SetDefault("storage.path", "./taskdesk.db")
	v.SetDefault("storage.secret", "")
	v.SetDefault("storage.token_ttl", 365*24*time.Hour)
	v.SetDefault("ui.feedback_duration", 2*time.Second)
	v.SetDefault("ui.redirect_delay", time.Second)
	v.SetDefault("backend.addr", ":50051")
}

// LoadConfig reads defaults, the optional config file and TASKDESK_*
// environment variables, in increasing precedence. Flags bound to v win over
// all of them.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// LoadEnv loads environment variables from a .env file. A missing file is not
// an error.
func LoadEnv(filename string) error {
	// Open the .env file
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	// Read the file line by line
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on the first equals sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue // Skip malformed lines
		}

		// Trim spaces and optional quotes from the value
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Variables already set in the environment win
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		os.Setenv(key, value)
	}

	return scanner.Err()
}
