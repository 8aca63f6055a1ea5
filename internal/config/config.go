package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-quake-impact/internal/hazard"
	"github.com/mr1hm/go-quake-impact/internal/impact"
	"github.com/mr1hm/go-quake-impact/internal/report"
)

type Config struct {
	Server    ServerConfig
	Worker    WorkerConfig
	Scenarios ScenarioConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
	Model     ModelConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type ScenarioConfig struct {
	Enabled      bool
	Dir          string
	DataDir      string
	ReportDir    string
	PollInterval time.Duration
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// ModelConfig holds the engine parameters that can be overridden from the
// environment. Unset variables keep the ITB defaults.
type ModelConfig struct {
	X                 float64
	Y                 float64
	Tolerance         float64
	MinBand           int
	MaxBand           int
	Step              float64
	IncludeDisplaced  bool
	DisplacementRates string
	Rounding          int
	Locale            string
	LegacyNaNSentinel bool
	BandWorkers       int
	Gender            bool
	Age               bool
}

func Load() (*Config, error) {
	def := impact.DefaultParams()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Scenarios: ScenarioConfig{
			Enabled:      getEnvBool("SCENARIOS_ENABLED", false),
			Dir:          getEnv("SCENARIO_DIR", "./scenarios"),
			DataDir:      getEnv("SCENARIO_DATA_DIR", "./data/layers"),
			ReportDir:    getEnv("SCENARIO_REPORT_DIR", "./data/reports"),
			PollInterval: getEnvDuration("SCENARIO_POLL_INTERVAL", 5*time.Minute),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/quake-impact.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Model: ModelConfig{
			X:                 getEnvFloat("MODEL_X", def.Model.X),
			Y:                 getEnvFloat("MODEL_Y", def.Model.Y),
			Tolerance:         getEnvFloat("MODEL_TOLERANCE", def.Tolerance),
			MinBand:           getEnvInt("MODEL_MIN_BAND", def.MinBand),
			MaxBand:           getEnvInt("MODEL_MAX_BAND", def.MaxBand),
			Step:              getEnvFloat("MODEL_STEP", def.Step),
			IncludeDisplaced:  getEnvBool("MODEL_INCLUDE_DISPLACED", def.IncludeDisplaced),
			DisplacementRates: getEnv("DISPLACEMENT_RATES", ""),
			Rounding:          getEnvInt("MODEL_ROUNDING", int(def.Rounding)),
			Locale:            getEnv("MODEL_LOCALE", def.Locale),
			LegacyNaNSentinel: getEnvBool("MODEL_LEGACY_NAN_SENTINEL", def.LegacyNaNSentinel),
			BandWorkers:       getEnvInt("MODEL_BAND_WORKERS", def.BandWorkers),
			Gender:            getEnvBool("DEMOGRAPHICS_GENDER", def.Demographics.Gender),
			Age:               getEnvBool("DEMOGRAPHICS_AGE", def.Demographics.Age),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.Worker.BufferSize < 0 {
		return fmt.Errorf("worker buffer size must not be negative")
	}

	if c.Scenarios.Enabled && c.Scenarios.PollInterval < 10*time.Second {
		return fmt.Errorf("scenario poll interval must be at least 10 seconds")
	}

	if _, err := c.Model.Params(); err != nil {
		return fmt.Errorf("invalid model config: %w", err)
	}

	return nil
}

// Params builds validated engine parameters.
func (m ModelConfig) Params() (impact.Params, error) {
	p := impact.DefaultParams()
	p.Model = hazard.FatalityModel{X: m.X, Y: m.Y, Label: p.Model.Label}
	p.Tolerance = m.Tolerance
	p.MinBand = m.MinBand
	p.MaxBand = m.MaxBand
	p.Step = m.Step
	p.IncludeDisplaced = m.IncludeDisplaced
	p.Rounding = int64(m.Rounding)
	p.Locale = m.Locale
	p.LegacyNaNSentinel = m.LegacyNaNSentinel
	p.BandWorkers = m.BandWorkers
	p.Demographics = report.DefaultDemographics()
	p.Demographics.Gender = m.Gender
	p.Demographics.Age = m.Age

	if m.DisplacementRates != "" {
		rates, err := ParseRates(m.DisplacementRates)
		if err != nil {
			return impact.Params{}, err
		}
		if p.DisplacementRates, err = impact.NewRateTable(rates); err != nil {
			return impact.Params{}, err
		}
	}

	if err := p.Validate(); err != nil {
		return impact.Params{}, err
	}
	if _, err := report.NewFormatter(p.Locale); err != nil {
		return impact.Params{}, err
	}
	return p, nil
}

// ParseRates parses a "band:rate" comma separated list such as "5:0,6:1,7:1".
func ParseRates(s string) (map[int]float64, error) {
	rates := make(map[int]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid displacement rate %q: want band:rate", pair)
		}
		band, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("invalid band in %q: %w", pair, err)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate in %q: %w", pair, err)
		}
		if _, dup := rates[band]; dup {
			return nil, fmt.Errorf("duplicate displacement rate for band %d", band)
		}
		rates[band] = rate
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no displacement rates in %q", s)
	}
	return rates, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
