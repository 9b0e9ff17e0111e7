package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config 进程配置，全部来自环境变量
type Config struct {
	BaseURL    string `env:"ARENA_BASE_URL"     envDefault:"http://10.69.4.1:3001"`
	TeamName   string `env:"ARENA_TEAM_NAME,required"`
	Secret     string `env:"ARENA_SECRET,required"`
	Role       string `env:"ARENA_ROLE"         envDefault:"navigator"`
	ListenAddr string `env:"ARENA_LISTEN_ADDR"  envDefault:":8080"`
	LogFile    string `env:"ARENA_LOG_FILE"     envDefault:"app.log"`
	PlacesFile string `env:"ARENA_PLACES_FILE"  envDefault:"web/places.json"`
	WebDir     string `env:"ARENA_WEB_DIR"      envDefault:"web"`
}

// Load 解析环境变量；缺少队伍名或密钥时报错
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
