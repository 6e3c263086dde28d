package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Device Device `yaml:"device"`
	Server Server `yaml:"server"`
}

type Device struct {
	ID string `yaml:"id"` // identifies this check-in station in events and presence
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	LocalCache    string `yaml:"localCachePath"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Server.LocalCache == "" {
		config.Server.LocalCache = "./data/scanlink.db"
	}

	return config, nil
}
