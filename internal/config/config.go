package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const defaultYears = "2018,2019,2020,2021,2022,2023,2024"

// Config holds settings for the dataset job and the predictor, populated from
// environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	// Dataset pipeline.
	Years         []int
	OutputPath    string
	OpenF1BaseURL string
	OpenF1Timeout time.Duration

	// Fetch cache.
	CachePath       string
	CacheMemorySize int
	CacheTTL        time.Duration

	// Optional corpus publishing; disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string

	// Optional metrics export for the batch job; disabled when no URL is set.
	PushgatewayURL string
	PushJob        string

	// Predictor.
	HTTPAddr        string
	ShutdownTimeout time.Duration
	ModelPath       string
	LabelsPath      string
	CircuitsPath    string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	years, err := parseYears(sharedcfg.EnvOrDefault("DATASET_YEARS", defaultYears))
	if err != nil {
		return nil, err
	}

	openF1Timeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("OPENF1_TIMEOUT", "30s"))
	if err != nil || openF1Timeout <= 0 {
		return nil, errors.New("invalid OPENF1_TIMEOUT")
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("CACHE_TTL", "0s"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid CACHE_TTL")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		Years:           years,
		OutputPath:      sharedcfg.EnvOrDefault("DATASET_OUTPUT", "data/f1_dataset.csv"),
		OpenF1BaseURL:   strings.TrimRight(sharedcfg.EnvOrDefault("OPENF1_BASE_URL", "https://api.openf1.org/v1"), "/"),
		OpenF1Timeout:   openF1Timeout,
		CachePath:       sharedcfg.EnvOrDefault("CACHE_PATH", "cache/openf1.db"),
		CacheMemorySize: parseCacheMemorySize(),
		CacheTTL:        cacheTTL,
		KafkaBrokers:    brokers,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "f1-corpus-rows"),
		PushgatewayURL:  strings.TrimRight(os.Getenv("PUSHGATEWAY_URL"), "/"),
		PushJob:         sharedcfg.EnvOrDefault("PUSHGATEWAY_JOB", "f1-dataset"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		ModelPath:       sharedcfg.EnvOrDefault("MODEL_PATH", "models/f1_predictor_model.json"),
		LabelsPath:      sharedcfg.EnvOrDefault("LABELS_PATH", "models/label_encoder.json"),
		CircuitsPath:    sharedcfg.EnvOrDefault("CIRCUITS_PATH", "data/circuits.csv"),
	}

	if cfg.OutputPath == "" {
		return nil, errors.New("DATASET_OUTPUT is required")
	}
	if cfg.CachePath == "" {
		return nil, errors.New("CACHE_PATH is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

// PublishEnabled reports whether corpus rows should also go to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// PushEnabled reports whether the dataset job should push its metrics.
func (c *Config) PushEnabled() bool {
	return c.PushgatewayURL != ""
}

// parseYears reads a comma-separated year list, keeping the given order.
func parseYears(s string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y < 1950 {
			return nil, fmt.Errorf("invalid DATASET_YEARS entry %q", part)
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		return nil, errors.New("DATASET_YEARS must list at least one year")
	}
	return years, nil
}

func parseCacheMemorySize() int {
	if s := os.Getenv("CACHE_MEMORY_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
