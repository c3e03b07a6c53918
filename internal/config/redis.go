package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,required,notEmpty"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Channel  string `env:"REDIS_CHANNEL" envDefault:"smartctx.events"`
}

func LoadRedisConfig() (*RedisConfig, error) {
	c := &RedisConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse redis config: %w", err)
	}
	return c, nil
}
