package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Environment string `mapstructure:"environment"`

	Platform struct {
		URL    string `mapstructure:"url"`
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"platform"`

	Catalog struct {
		// Path to a catalog JSON document; empty uses the embedded seed.
		Path string `mapstructure:"path"`
		// SQLitePath to a node database export; takes precedence over Path.
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"catalog"`

	Compliance struct {
		// ServerManagedKeys overrides the default forbidden top-level set.
		ServerManagedKeys []string `mapstructure:"server_managed_keys"`
		// ContestedKeys overrides the keys flagged as platform-inconsistent.
		ContestedKeys []string `mapstructure:"contested_keys"`
		// PositionPolicy is "strict" or "autofix".
		PositionPolicy string `mapstructure:"position_policy"`
	} `mapstructure:"compliance"`

	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		// Enable turns the Postgres audit trail on.
		Enable bool `mapstructure:"enable"`
	} `mapstructure:"db"`

	Auth struct {
		// Token is the static bearer token callers must present.
		Token string `mapstructure:"token"`
		// Issuer enables OIDC access-token verification when set.
		Issuer string `mapstructure:"issuer"`
		// DevModeBypass disables auth entirely in the DEV environment.
		DevModeBypass bool `mapstructure:"dev_mode_bypass"`
	} `mapstructure:"auth"`

	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment. An
// explicit path wins over the search locations.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.SetEnvPrefix("flowguard")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; env vars can carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Platform.URL = normalizeBaseURL(config.Platform.URL)
	config.Auth.Issuer = normalizeBaseURL(config.Auth.Issuer)

	return &config, nil
}

// normalizeBaseURL trims whitespace and any trailing slash so path joins
// stay predictable regardless of how the URL was pasted.
func normalizeBaseURL(input string) string {
	u := strings.TrimSpace(input)
	if strings.HasSuffix(u, "/") {
		u = strings.TrimRight(u, "/")
	}
	return u
}
