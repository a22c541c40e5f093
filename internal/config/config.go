// Package config holds the configuration of the farmstore service.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/farmstore/pkg/config"
	"github.com/abgdnv/farmstore/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig           `koanf:"server"`
	Database   config.DatabaseConfig       `koanf:"database"`
	Log        config.LogConfig            `koanf:"log"`
	PProf      config.PProfConfig          `koanf:"pprof"`
	GRPC       config.GrpcServerConfig     `koanf:"grpc"`
	Shutdown   config.ShutdownConfig       `koanf:"shutdown"`
	Sales      SalesConfig                 `koanf:"sales"`
	NATS       config.NATSConfig           `koanf:"nats"`
	Redis      config.RedisConfig          `koanf:"redis"`
	Telemetry  config.TelemetryConfig      `koanf:"telemetry"`
	Breaker    config.CircuitBreakerConfig `koanf:"breaker"`
}

type SalesConfig struct {
	Retry config.RetryConfig `koanf:"retry"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())

	b.WriteString(c.Database.String())
	b.WriteString(c.GRPC.String())

	b.WriteString("\n--- Sales ---\n")
	b.WriteString(fmt.Sprintf("  sales.retry.maxattempts: %d\n", c.Sales.Retry.MaxAttempts))
	b.WriteString(fmt.Sprintf("  sales.retry.initialbackoff: %s\n", c.Sales.Retry.InitialBackoff))

	b.WriteString(c.NATS.String())
	b.WriteString(c.Breaker.String())
	b.WriteString(c.Redis.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.GRPC,
		&c.Sales.Retry,
		&c.NATS,
		&c.Redis,
		&c.Telemetry,
	}
	if c.NATS.Enabled {
		validators = append(validators, &c.Breaker)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
