package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Identity  Identity  `yaml:"identity"`
	Inference Inference `yaml:"inference"`
}

type App struct {
	ID               string `yaml:"id"`
	PrivilegedPrefix string `yaml:"privilegedPrefix"`
	SessionSecret    string `yaml:"sessionSecret"`
	SessionTTLHours  int    `yaml:"sessionTTLHours"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Identity struct {
	Endpoint      string `yaml:"endpoint"`
	APIKey        string `yaml:"apiKey"`
	ExchangeToken string `yaml:"exchangeToken"`
}

type Inference struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	Model    string `yaml:"model"`
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

	if config.App.ID == "" {
		config.App.ID = "default-app-id"
	}
	if config.App.SessionTTLHours <= 0 {
		config.App.SessionTTLHours = 24
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}

	return config, nil
}
