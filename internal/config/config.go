package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config struct {
	Logger  Logger  `envPrefix:"LOGGER_"`
	Catalog string  `env:"CATALOG"`
	Storage Storage `envPrefix:"STORAGE_"`
	Metrics Metrics `envPrefix:"METRICS_"`
	Preview Preview `envPrefix:"PREVIEW_"`
}

func Parse() (*Config, error) {
	conf, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: "CROSSPOST_",
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &conf, nil
}
