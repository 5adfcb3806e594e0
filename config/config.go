package config

import (
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/tradeogre/internal/domain"
)

// Config runtime configuration of the watcher process.
type Config struct {
	BaseURL         string
	Pair            domain.CurrencyPair
	RefreshInterval time.Duration
	SecretsDir      string
	// PassphraseEnv names the environment variable holding the secret
	// store passphrase.
	PassphraseEnv string
}

type configTmp struct {
	BaseURL         string        `yaml:"base_url,omitempty"`
	Pair            string        `yaml:"pair"`
	RefreshInterval time.Duration `yaml:"refresh_interval,omitempty"`
	SecretsDir      string        `yaml:"secrets_dir,omitempty"`
	PassphraseEnv   string        `yaml:"passphrase_env,omitempty"`
}

// Get reads configuration from the yaml file named by --config, falling
// back to individual flags when no file is given.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	baseURL := flag.String("baseurl", "", "exchange API base url")
	pairFlag := flag.String("pair", "BTC-XMR", "market to watch, example: BTC-XMR")
	refreshInterval := flag.Duration("refreshinterval", 30*time.Second, "market refresh interval")
	secretsDir := flag.String("secretsdir", "", "directory for the credential store")
	passphraseEnv := flag.String("passphraseenv", "", "env var holding the credential store passphrase")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	pair, ok := domain.ParsePair(*pairFlag)
	if !ok {
		return Config{}, errors.Errorf("invalid --pair provided, --pair=%s", *pairFlag)
	}
	return withDefaults(Config{
		BaseURL:         *baseURL,
		Pair:            pair,
		RefreshInterval: *refreshInterval,
		SecretsDir:      *secretsDir,
		PassphraseEnv:   *passphraseEnv,
	}), nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}

	pair, ok := domain.ParsePair(tmp.Pair)
	if !ok {
		return Config{}, errors.Errorf("invalid pair in config: %q", tmp.Pair)
	}
	return withDefaults(Config{
		BaseURL:         tmp.BaseURL,
		Pair:            pair,
		RefreshInterval: tmp.RefreshInterval,
		SecretsDir:      tmp.SecretsDir,
		PassphraseEnv:   tmp.PassphraseEnv,
	}), nil
}

func withDefaults(c Config) Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://tradeogre.com/api/v1"
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 30 * time.Second
	}
	if c.SecretsDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.SecretsDir = home + "/.tradeogre"
		} else {
			c.SecretsDir = ".tradeogre"
		}
	}
	if c.PassphraseEnv == "" {
		c.PassphraseEnv = "TRADEOGRE_STORE_PASSPHRASE"
	}
	return c
}
