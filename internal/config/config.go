package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider     string        `yaml:"provider"` // "yahoo", "rest" or "mock"
		BaseURL      string        `yaml:"base_url"`
		APIKey       string        `yaml:"api_key"`
		Range        string        `yaml:"range"`
		Interval     string        `yaml:"interval"`
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
	} `yaml:"data_source"`
	Indicators struct {
		RSIPeriod  int   `yaml:"rsi_period"`
		SMAWindows []int `yaml:"sma_windows"`
		MinRows    int   `yaml:"min_rows"`
		RangeBars  int   `yaml:"range_bars"`
	} `yaml:"indicators"`
	Forecast struct {
		Enabled     bool `yaml:"enabled"`
		Lookback    int  `yaml:"lookback"`
		HorizonDays int  `yaml:"horizon_days"`
	} `yaml:"forecast"`
	Resolver struct {
		Aliases map[string]string `yaml:"aliases"`
	} `yaml:"resolver"`
	Display struct {
		Currency  string `yaml:"currency"`
		TableRows int    `yaml:"table_rows"`
	} `yaml:"display"`
	Server struct {
		Addr            string        `yaml:"addr"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron  string `yaml:"refresh_cron"`
		DigestCron   string `yaml:"digest_cron"`
		OnlyWhenOpen bool   `yaml:"only_when_open"`
	} `yaml:"schedule"`
	Watch struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"watch"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults fill every unset field.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Forecast.Enabled = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DIPWATCH_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DIPWATCH_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DIPWATCH_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DIPWATCH_RANGE"); v != "" {
		cfg.DataSource.Range = v
	}
	if v := os.Getenv("DIPWATCH_INTERVAL"); v != "" {
		cfg.DataSource.Interval = v
	}
	if v := os.Getenv("DIPWATCH_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DataSource.FetchTimeout = d
		}
	}
	if v := os.Getenv("DIPWATCH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DIPWATCH_REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.RefreshInterval = d
		}
	}
	if v := os.Getenv("DIPWATCH_FORECAST_HORIZON"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Forecast.HorizonDays = n
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("WATCH_STATE_FILE"); v != "" {
		cfg.Watch.StateFile = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = "rest"
		}
	}
	if cfg.DataSource.Range == "" {
		cfg.DataSource.Range = "3mo"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1d"
	}
	if cfg.DataSource.FetchTimeout == 0 {
		cfg.DataSource.FetchTimeout = 15 * time.Second
	}
	if cfg.Indicators.RSIPeriod == 0 {
		cfg.Indicators.RSIPeriod = 14
	}
	if len(cfg.Indicators.SMAWindows) == 0 {
		cfg.Indicators.SMAWindows = []int{20, 50}
	}
	if cfg.Indicators.MinRows == 0 {
		cfg.Indicators.MinRows = cfg.MinRowsFloor()
	}
	if cfg.Forecast.Lookback == 0 {
		cfg.Forecast.Lookback = 30
	}
	if cfg.Forecast.HorizonDays == 0 {
		cfg.Forecast.HorizonDays = 7
	}
	if cfg.Display.Currency == "" {
		cfg.Display.Currency = "SEK"
	}
	if cfg.Display.TableRows == 0 {
		cfg.Display.TableRows = 10
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RefreshInterval == 0 {
		cfg.Server.RefreshInterval = 30 * time.Second
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "*/30 * * * * *"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 18 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/dipwatch.db"
	}
	if cfg.Watch.StateFile == "" {
		cfg.Watch.StateFile = "data/watches.json"
	}
}

// MinRowsFloor is the fewest bars for which RSI and every SMA are defined on the last bar.
func (c *Config) MinRowsFloor() int {
	floor := c.Indicators.RSIPeriod + 1
	for _, w := range c.Indicators.SMAWindows {
		if w > floor {
			floor = w
		}
	}
	return floor
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DataSource.Provider) {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if c.Indicators.RSIPeriod <= 0 {
		return fmt.Errorf("indicators.rsi_period must be positive")
	}
	for _, w := range c.Indicators.SMAWindows {
		if w <= 0 {
			return fmt.Errorf("indicators.sma_windows must be positive, got %d", w)
		}
	}
	if floor := c.MinRowsFloor(); c.Indicators.MinRows < floor {
		return fmt.Errorf("indicators.min_rows must be at least %d (rsi_period+1 and largest sma window), got %d", floor, c.Indicators.MinRows)
	}
	if c.Forecast.Lookback < 0 || c.Forecast.HorizonDays < 0 {
		return fmt.Errorf("forecast.lookback and forecast.horizon_days must not be negative")
	}
	if c.Server.RefreshInterval < time.Second {
		return fmt.Errorf("server.refresh_interval must be at least 1s")
	}
	return nil
}

// ValidateBot additionally checks what the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("schedule.refresh_cron: %w", err)
	}
	if _, err := parser.Parse(c.Schedule.DigestCron); err != nil {
		return fmt.Errorf("schedule.digest_cron: %w", err)
	}
	return nil
}
