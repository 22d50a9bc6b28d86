package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// OpenAQAPIKey is passed through as the X-API-Key header. An empty key is
	// not a startup error; ingestion reports it on every request instead.
	OpenAQAPIKey      string
	OpenAQBaseURL     string
	OpenAQTimeout     time.Duration
	OpenAQConcurrency int
	// OpenAQFetchTimeout bounds one full ingestion run (all sensors).
	OpenAQFetchTimeout time.Duration

	// MQTTBroker empty disables publishing.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

var defaults = map[string]string{
	"APP_ENV":              "dev",
	"LOG_LEVEL":            "info",
	"HTTP_ADDR":            ":5000",
	"OPENAQ_API_KEY":       "",
	"OPENAQ_BASE_URL":      "https://api.openaq.org/v3",
	"OPENAQ_TIMEOUT":       "10s",
	"OPENAQ_CONCURRENCY":   "1",
	"OPENAQ_FETCH_TIMEOUT": "90s",
	"MQTT_BROKER":          "",
	"MQTT_PORT":            "1883",
	"MQTT_CLIENT_ID":       "air-quality-dashboard",
	"MQTT_TOPIC":           "airquality/cologne/measurements",
}

type env struct {
	v *viper.Viper
}

func newEnv() env {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}
	return env{v: v}
}

// get returns the trimmed value of key. Whitespace-only values fall back to the default.
func (e env) get(key string) string {
	s := strings.TrimSpace(e.v.GetString(key))
	if s == "" {
		return defaults[key]
	}
	return s
}

func LoadFromEnv() (Config, error) {
	e := newEnv()

	appEnv := e.get("APP_ENV")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(e.get("LOG_LEVEL"))
	if err != nil {
		return Config{}, err
	}

	baseURL := strings.TrimRight(e.get("OPENAQ_BASE_URL"), "/")
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, fmt.Errorf("invalid OPENAQ_BASE_URL %q (expected http(s)://host[/path])", baseURL)
	}

	timeoutStr := e.get("OPENAQ_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid OPENAQ_TIMEOUT %q: %w", timeoutStr, err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("OPENAQ_TIMEOUT must be positive, got %v", timeout)
	}

	concurrencyStr := e.get("OPENAQ_CONCURRENCY")
	concurrency, err := strconv.Atoi(concurrencyStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid OPENAQ_CONCURRENCY %q: %w", concurrencyStr, err)
	}
	if concurrency < 1 {
		return Config{}, fmt.Errorf("OPENAQ_CONCURRENCY must be >= 1, got %d", concurrency)
	}

	fetchTimeoutStr := e.get("OPENAQ_FETCH_TIMEOUT")
	fetchTimeout, err := time.ParseDuration(fetchTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid OPENAQ_FETCH_TIMEOUT %q: %w", fetchTimeoutStr, err)
	}
	if fetchTimeout < timeout {
		return Config{}, fmt.Errorf("OPENAQ_FETCH_TIMEOUT must be >= OPENAQ_TIMEOUT (%v), got %v", timeout, fetchTimeout)
	}

	mqttPortStr := e.get("MQTT_PORT")
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort < 1 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT out of range: %d", mqttPort)
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           e.get("HTTP_ADDR"),
		OpenAQAPIKey:       e.get("OPENAQ_API_KEY"),
		OpenAQBaseURL:      baseURL,
		OpenAQTimeout:      timeout,
		OpenAQConcurrency:  concurrency,
		OpenAQFetchTimeout: fetchTimeout,
		MQTTBroker:         e.get("MQTT_BROKER"),
		MQTTPort:           mqttPort,
		MQTTClientID:       e.get("MQTT_CLIENT_ID"),
		MQTTTopic:          e.get("MQTT_TOPIC"),
	}, nil
}

// MQTTEnabled reports whether a broker has been configured.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
