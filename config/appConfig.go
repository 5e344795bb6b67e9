package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TimurBerdyyev/seller-apis/config/values"
)

type OzonConfig struct {
	ClientID string `yaml:"client_id"`
	APIKey   string `yaml:"api_key"`
	APIURL   string `yaml:"api_url"`
}

type YandexMarketConfig struct {
	Token      string `yaml:"token"`
	CampaignID string `yaml:"campaign_id"`
	BusinessID string `yaml:"business_id"`
	APIURL     string `yaml:"api_url"`
}

type FeedConfig struct {
	URL string `yaml:"url"`
	// HeaderRows — сколько строк файла пропустить до строки с заголовками.
	HeaderRows int `yaml:"header_rows"`
}

type AppConfig struct {
	Ozon         OzonConfig         `yaml:"ozon"`
	YandexMarket YandexMarketConfig `yaml:"yandex_market"`
	Feed         FeedConfig         `yaml:"feed"`
	Sync         values.SyncValues  `yaml:"sync"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	// Schedule is a cron expression; empty means a single cycle and exit.
	Schedule string `yaml:"schedule"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	config.applyEnv()
	return config, nil
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *AppConfig) applyEnv() {
	c.Ozon.ClientID = getEnv("CLIENT_ID", c.Ozon.ClientID)
	c.Ozon.APIKey = getEnv("SELLER_TOKEN", c.Ozon.APIKey)
	c.YandexMarket.Token = getEnv("MARKET_TOKEN", c.YandexMarket.Token)
	c.Postgres.applyEnv()
}
