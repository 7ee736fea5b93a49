package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable the pipelines need. It is constructed once in
// main and passed into each component, rather than living as a process-wide
// global.
type Config struct {
	// Email identifies us to Nominatim, which requires a contact address in
	// the user agent.
	Email string `yaml:"email"`
	Year  int    `yaml:"year"`

	Geocoding     GeocodingConfig     `yaml:"geocoding"`
	Features      FeaturesConfig      `yaml:"features"`
	Mongo         MongoConfig         `yaml:"mongo"`
	Redis         RedisConfig         `yaml:"redis"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Paths         PathsConfig         `yaml:"paths"`
}

type GeocodingConfig struct {
	NominatimURL string        `yaml:"nominatim_url"`
	PhotonURL    string        `yaml:"photon_url"`
	Timeout      time.Duration `yaml:"-"`

	// yaml.v3 cannot decode "120s" into a time.Duration directly.
	RawTimeout string `yaml:"timeout"`
}

type FeaturesConfig struct {
	// InputSeqLen is the number of hourly lags each training row carries.
	// StepSize is how many hours the window advances between rows.
	InputSeqLen         int `yaml:"input_seq_len"`
	StepSize            int `yaml:"step_size"`
	FeatureGroupVersion int `yaml:"feature_group_version"`
}

type MongoConfig struct {
	Connection string `yaml:"connection"`
	Database   string `yaml:"database"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

type ElasticsearchConfig struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type PathsConfig struct {
	Geodata      string `yaml:"geodata"`
	Models       string `yaml:"models"`
	TrainingData string `yaml:"training_data"`
}

func Defaults() *Config {
	return &Config{
		Email: "divvy-predictor@example.com",
		Year:  time.Now().Year(),
		Geocoding: GeocodingConfig{
			NominatimURL: "https://nominatim.openstreetmap.org",
			PhotonURL:    "https://photon.komoot.io",
			Timeout:      120 * time.Second,
		},
		Features: FeaturesConfig{
			InputSeqLen:         672,
			StepSize:            24,
			FeatureGroupVersion: 1,
		},
		Mongo: MongoConfig{
			Connection: "mongodb://localhost:27017/",
			Database:   "divvy",
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Paths: PathsConfig{
			Geodata:      "data/geodata",
			Models:       "data/models",
			TrainingData: "data/training",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist) and then applies DIVVY_* environment overrides on top of
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		contents, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(contents, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if cfg.Geocoding.RawTimeout != "" {
		timeout, err := time.ParseDuration(cfg.Geocoding.RawTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse geocoding timeout: %w", err)
		}
		cfg.Geocoding.Timeout = timeout
	}

	applyEnvironment(cfg)

	return cfg, nil
}

func applyEnvironment(cfg *Config) {
	if v := os.Getenv("DIVVY_EMAIL"); v != "" {
		cfg.Email = v
	}
	if v := os.Getenv("DIVVY_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Year = n
		}
	}
	if v := os.Getenv("DIVVY_MONGODB_CONNECTION"); v != "" {
		cfg.Mongo.Connection = v
	}
	if v := os.Getenv("DIVVY_MONGODB_DATABASE"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("DIVVY_REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("DIVVY_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("DIVVY_REDIS_DATABASE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Database = n
		}
	}
	if v := os.Getenv("DIVVY_ELASTICSEARCH_ADDRESS"); v != "" {
		cfg.Elasticsearch.Address = v
	}
	if v := os.Getenv("DIVVY_ELASTICSEARCH_USERNAME"); v != "" {
		cfg.Elasticsearch.Username = v
	}
	if v := os.Getenv("DIVVY_ELASTICSEARCH_PASSWORD"); v != "" {
		cfg.Elasticsearch.Password = v
	}
}

// DisplayedScenarioName is used in logs and experiment names.
func DisplayedScenarioName(scenario string) string {
	switch scenario {
	case "start":
		return "Departures"
	case "end":
		return "Arrivals"
	default:
		return scenario
	}
}
