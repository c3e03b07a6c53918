package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// TelegramConfig is only read when ENABLE_TELEGRAM is set.
type TelegramConfig struct {
	Token   string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	OwnerID int64  `env:"TELEGRAM_OWNER_ID,required"`
}

func LoadTelegramConfig() (*TelegramConfig, error) {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse telegram config: %w", err)
	}
	return c, nil
}
