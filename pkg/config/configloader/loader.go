// Package configloader layers config.yaml, a .env file and the process environment into a typed config.
package configloader

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultConfigFile = "config.yaml"
	dotEnvFile        = ".env"
)

type Validator interface {
	Validate() error
}

// source is one configuration layer. Later layers override earlier ones.
type source struct {
	name string
	load func(k *koanf.Koanf) error
}

// Load reads the configuration of the named service. Keys from the environment use the
// upper-cased service name as prefix and underscores as separators, e.g. FARMSTORE_DATABASE_URL.
// <SERVICE>_CONFIG_FILE replaces the default config.yaml; a missing explicit file is an error.
func Load[T Validator](serviceName string) (T, error) {
	var cfg T
	prefix := strings.ToUpper(serviceName) + "_"
	k := koanf.New(".")

	configFile, explicit := os.LookupEnv(prefix + "CONFIG_FILE")
	if !explicit || configFile == "" {
		configFile, explicit = defaultConfigFile, false
	}
	if explicit {
		if _, err := os.Stat(configFile); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", configFile, err)
		}
	}

	for _, src := range sources(configFile, prefix) {
		if err := src.load(k); err != nil {
			log.Printf("WARN: skipping %s: %v", src.name, err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func sources(configFile, prefix string) []source {
	keyOf := envKey(prefix)
	return []source{
		{name: configFile, load: func(k *koanf.Koanf) error {
			return ignoreMissing(k.Load(file.Provider(configFile), yaml.Parser()))
		}},
		{name: dotEnvFile, load: func(k *koanf.Koanf) error {
			vars, err := godotenv.Read(dotEnvFile)
			if err != nil {
				return ignoreMissing(err)
			}
			values := make(map[string]any, len(vars))
			for name, value := range vars {
				if strings.HasPrefix(name, prefix) {
					values[keyOf(name)] = value
				}
			}
			return k.Load(confmap.Provider(values, "."), nil)
		}},
		{name: "environment", load: func(k *koanf.Koanf) error {
			return k.Load(env.Provider(prefix, ".", keyOf), nil)
		}},
	}
}

// envKey turns FARMSTORE_SALES_RETRY_MAXATTEMPTS into sales.retry.maxattempts.
func envKey(prefix string) func(string) string {
	return func(name string) string {
		name = strings.TrimPrefix(name, prefix)
		return strings.ReplaceAll(strings.ToLower(name), "_", ".")
	}
}

func ignoreMissing(err error) error {
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
